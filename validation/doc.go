// Package validation checks configuration structs against their validate
// tags (go-playground/validator) and reports failures as INVALID_INPUT
// AppErrors. Field names follow the mapstructure tags, so messages name the
// config file keys:
//
//	type ObjectStore struct {
//	    Bucket   string `mapstructure:"bucket" validate:"required"`
//	    Driver   string `mapstructure:"driver" validate:"omitempty,oneof=s3 minio"`
//	}
//	err := validation.Validate(cfg) // "bucket: is required"
package validation
