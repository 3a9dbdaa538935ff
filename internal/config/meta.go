package config

import (
	"reflect"
	"sort"
	"strings"
)

// SettingsField describes one key accepted in settings.json
type SettingsField struct {
	Example any
	Key     string
	Type    string
}

// GetSettingsFields lists the settings.json keys with an example value each.
// It reads the Settings struct tags so new fields show up automatically.
func GetSettingsFields() []SettingsField {
	t := reflect.TypeOf(Settings{})
	fields := make([]SettingsField, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		key := strings.Split(jsonTag, ",")[0]
		fieldType := field.Type
		if fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}

		fields = append(fields, SettingsField{
			Example: exampleValue(fieldType.Kind(), key),
			Key:     key,
			Type:    fieldType.Kind().String(),
		})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return fields
}

// GetSettingsExample returns a settings.json document with every key set
func GetSettingsExample() map[string]any {
	example := make(map[string]any)
	for _, field := range GetSettingsFields() {
		example[field.Key] = field.Example
	}
	return example
}

func exampleValue(kind reflect.Kind, key string) any {
	switch kind {
	case reflect.Bool:
		return key == "debug"
	case reflect.Int:
		switch key {
		case "busy_timeout_ms":
			return DefaultBusyTimeoutMs
		case "max_log_files":
			return 1000
		}
		return 0
	case reflect.String:
		if key == "db_path" {
			return "~/.devboard/devboard.db"
		}
		return "example"
	}
	return nil
}
