package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// processStructFields walks through struct fields to override config with env vars
func processStructFields(s interface{}) error {
	val := reflect.ValueOf(s)

	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.Struct {
			if err := processStructFields(field.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue, exists := os.LookupEnv(envTag)
		if !exists {
			continue
		}

		if err := setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from env var %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromEnv assigns an environment value to a struct field
func setFieldFromEnv(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value %q: %w", value, err)
		}
		field.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value %q: %w", value, err)
		}
		field.SetBool(boolValue)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}

	return nil
}
