package pool

import (
	"strings"
)

// The property schema is deliberately small. Native properties are typed and
// checked, anything under the `user:` prefix is free form.

const (
	KindFilesystem = "filesystem"
	KindVolume     = "volume"
)

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// IsUserProperty reports whether the key lives in the user namespace.
func IsUserProperty(key string) bool {
	return strings.HasPrefix(key, "user:") && len(key) > len("user:")
}

// CheckDatasetProperty reports whether key/value is acceptable when creating
// or cloning a dataset of the given kind.
func CheckDatasetProperty(kind, key string, value any) bool {
	if IsUserProperty(key) {
		return true
	}
	switch key {
	case "atime", "readonly", "exec":
		n, ok := asInt(value)
		return ok && (n == 0 || n == 1)
	case "quota", "refreservation":
		n, ok := asInt(value)
		return ok && n >= 0
	case "recordsize":
		if kind != KindFilesystem {
			return false
		}
		n, ok := asInt(value)
		return ok && n > 0 && n&(n-1) == 0
	case "volsize":
		if kind != KindVolume {
			return false
		}
		n, ok := asInt(value)
		return ok && n > 0
	}
	return false
}

// CheckSnapshotProperty reports whether key/value may be attached to a
// snapshot at creation time. Only user properties qualify.
func CheckSnapshotProperty(key string, value any) bool {
	return IsUserProperty(key)
}
