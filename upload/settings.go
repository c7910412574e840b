package upload

import (
	"strings"

	"github.com/kbukum/streamupload/storage"
	"github.com/kbukum/streamupload/util"
)

// Settings is the file-level uploader configuration.
//
//	upload:
//	  extensions: [txt, png]
//	  types: ["image/.*"]
//	  max_size: 10MB
//	  base_folder: /var/uploads
type Settings struct {
	Extensions []string `mapstructure:"extensions" json:"extensions"`
	Types      []string `mapstructure:"types" json:"types"`
	// MaxSize is a human-readable byte ceiling such as "10MB". Empty or
	// unparsable values leave the upload size unlimited.
	MaxSize    string `mapstructure:"max_size" json:"max_size"`
	BaseFolder string `mapstructure:"base_folder" json:"base_folder"`
}

// Options converts the settings into uploader options targeting cfg.
func (s Settings) Options(cfg storage.Config) Options {
	opts := Options{
		Extensions: splitList(s.Extensions),
		Types:      splitList(s.Types),
		Storage:    cfg,
	}
	if n := util.ParseSize(s.MaxSize, -1); n >= 0 {
		opts.MaxSize = &n
	}
	if s.BaseFolder != "" {
		folder := s.BaseFolder
		opts.BaseFolder = &folder
	}
	return opts
}

// splitList accepts both YAML lists and the comma-separated strings that
// environment variables produce.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		out = append(out, strings.Split(item, ",")...)
	}
	return util.Filter(util.Map(out, strings.TrimSpace), func(s string) bool { return s != "" })
}
