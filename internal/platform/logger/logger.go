package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Logger wraps zap's sugared logger and scrubs sensitive values out of
// structured fields before they are written.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, scrub(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, scrub(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(keysAndValues)...)}
}

// policy controls field scrubbing. Read once from env: redaction is on unless
// LOG_REDACTION_ENABLED is explicitly false, and LOG_HASH_SALT feeds the
// tenant hash.
type policy struct {
	enabled bool
	salt    string
}

var (
	policyOnce   sync.Once
	activePolicy policy
)

func loadPolicy() policy {
	policyOnce.Do(func() {
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			activePolicy.enabled = false
		default:
			activePolicy.enabled = true
		}
		activePolicy.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return activePolicy
}

func scrub(kv []interface{}) []interface{} {
	p := loadPolicy()
	if !p.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			// dangling key, let zap complain about it
			out = append(out, kv[i])
			break
		}
		out = append(out, kv[i], p.scrubValue(fieldKey(kv[i]), kv[i+1]))
	}
	return out
}

func fieldKey(k interface{}) string {
	s, ok := k.(string)
	if !ok {
		s = fmt.Sprint(k)
	}
	return strings.TrimSpace(strings.ToLower(s))
}

func (p policy) scrubValue(key string, val interface{}) interface{} {
	if key != "" {
		if secretField(key) {
			return "[REDACTED]"
		}
		if hashedField(key) {
			return p.hash(val)
		}
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = p.scrubValue(strings.TrimSpace(strings.ToLower(k)), inner)
		}
		return out
	case string:
		if bearerShaped(v) {
			return "[REDACTED]"
		}
		return v
	default:
		return val
	}
}

func secretField(key string) bool {
	for _, frag := range []string{"token", "authorization", "password", "secret", "api_key", "apikey"} {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

// hashedField keys stay correlatable across lines without logging the raw
// value. Tenant identifiers always travel hashed.
func hashedField(key string) bool {
	return strings.Contains(key, "tenant_id")
}

func (p policy) hash(val interface{}) string {
	var raw string
	switch t := val.(type) {
	case nil:
		return ""
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		raw = fmt.Sprint(val)
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

// bearerShaped reports whether a string value looks like a signed bearer
// token: three dot-separated segments of plausible length.
func bearerShaped(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
