package log

import "go.uber.org/zap"

const (
	FieldNameComponent = "component"
	FieldNameKey       = "key"
)

// FieldComponent returns a zap field with the component name.
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldKey returns a zap field with the image key (its source URL).
func FieldKey(key string) zap.Field {
	return zap.String(FieldNameKey, key)
}
