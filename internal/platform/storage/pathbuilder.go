package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
)

// MediaFolder groups uploaded images by what they illustrate.
type MediaFolder string

const (
	FolderProjects     MediaFolder = "projects"
	FolderProfile      MediaFolder = "profile"
	FolderTestimonials MediaFolder = "testimonials"
)

const maxFileNameRunes = 96

// PathParams provide the identifiers used to compose an object key.
type PathParams struct {
	// Scope narrows the folder, e.g. a project id. Optional.
	Scope    string
	Index    int
	FileName string
	Now      time.Time
}

// PathBuilder composes the object path for a folder.
type PathBuilder func(PathParams) (string, error)

var (
	pathBuilders = map[MediaFolder]PathBuilder{
		FolderProjects:     folderBuilder(FolderProjects),
		FolderProfile:      folderBuilder(FolderProfile),
		FolderTestimonials: folderBuilder(FolderTestimonials),
	}
	pathBuildersMu sync.RWMutex
)

// RegisterPathBuilder overrides or registers a builder for a folder.
func RegisterPathBuilder(folder MediaFolder, builder PathBuilder) {
	pathBuildersMu.Lock()
	defer pathBuildersMu.Unlock()
	if builder == nil {
		delete(pathBuilders, folder)
		return
	}
	pathBuilders[folder] = builder
}

// KnownFolder reports whether uploads may target folder.
func KnownFolder(folder MediaFolder) bool {
	pathBuildersMu.RLock()
	defer pathBuildersMu.RUnlock()
	_, ok := pathBuilders[folder]
	return ok
}

// BuildObjectPath resolves the object path as <folder>[/<scope>]/<unixMillis>_<index>_<name>.
func BuildObjectPath(folder MediaFolder, params PathParams) (string, error) {
	pathBuildersMu.RLock()
	builder, ok := pathBuilders[folder]
	pathBuildersMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("storage: unsupported media folder %q", folder)
	}
	return builder(params)
}

func folderBuilder(folder MediaFolder) PathBuilder {
	return func(params PathParams) (string, error) {
		base := string(folder)
		if strings.TrimSpace(params.Scope) != "" {
			scope, err := validateSegment("scope", params.Scope)
			if err != nil {
				return "", err
			}
			base += "/" + scope
		}
		if params.Index < 0 {
			return "", fmt.Errorf("storage: index must not be negative")
		}
		name, err := SanitizeFileName(params.FileName)
		if err != nil {
			return "", err
		}
		now := params.Now
		if now.IsZero() {
			now = time.Now()
		}
		return fmt.Sprintf("%s/%d_%d_%s", base, now.UnixMilli(), params.Index, name), nil
	}
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}

// SanitizeFileName keeps the last path element of name and replaces anything
// outside letters, digits, '.', '-' and '_' with '-'.
func SanitizeFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	runes := 0
	lastDash := false
	for _, r := range name {
		if runes >= maxFileNameRunes {
			break
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_':
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if lastDash {
				continue
			}
			b.WriteByte('-')
			lastDash = true
		}
		runes++
	}
	out := strings.Trim(b.String(), "-.")
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	if out == "" {
		return "", fmt.Errorf("storage: fileName is required")
	}
	return out, nil
}
