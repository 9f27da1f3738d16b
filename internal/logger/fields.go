package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the key for an extraction session id.
	FieldSession = "session_id"
	// FieldVault is the key for the vault id a session belongs to.
	FieldVault = "vault_id"
	// FieldUser is the key for the user id a session belongs to.
	FieldUser = "user_id"
	// FieldCategory is the key for an extraction pass category.
	FieldCategory = "category"
	// FieldModel is the key for the completion model name.
	FieldModel = "model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with an empty key or value.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// WithSession scopes logger to one extraction session.
func WithSession(logger *zap.Logger, sessionID, vaultID, userID string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldSession, Value: sessionID},
		StringField{Key: FieldVault, Value: vaultID},
		StringField{Key: FieldUser, Value: userID},
	)...)
}
