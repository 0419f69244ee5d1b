// Package prompt loads the LLM prompt templates. Templates ship embedded in
// the binary and can be overridden at runtime by files in a prompts
// directory. The Loader is safe for concurrent use.
package prompt

import (
	"embed"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// defaultPrompts embeds the template files shipped with the binary.
//
//go:embed prompts/*
var defaultPrompts embed.FS

// Loader reads prompt template files, preferring runtime overrides on disk
// over the embedded defaults. Contents are cached after the first read;
// Reload invalidates the cache.
type Loader struct {
	promptsDir string // runtime override directory (may be empty)
	cache      map[string]string
	mu         sync.RWMutex
}

// NewLoader creates a Loader that reads templates from promptsDir, falling
// back to the embedded defaults. An empty promptsDir uses only the embedded
// templates.
func NewLoader(promptsDir string) *Loader {
	return &Loader{
		promptsDir: promptsDir,
		cache:      make(map[string]string),
	}
}

// Load returns the content of the named template (e.g. "intent_analyzer.md").
//
// Priority:
//  1. Disk file at promptsDir/name (runtime override)
//  2. Embedded default at prompts/name
//  3. Empty string (file simply absent)
//
// A disk read error other than not-exist logs a warning and falls back to
// the embedded default.
func (l *Loader) Load(name string) string {
	l.mu.RLock()
	if val, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return val
	}
	l.mu.RUnlock()

	content := l.loadUncached(name)

	// Double-check under write lock: two goroutines may race through the
	// read-lock miss at the same time.
	l.mu.Lock()
	if val, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return val
	}
	l.cache[name] = content
	l.mu.Unlock()

	return content
}

func (l *Loader) loadUncached(name string) string {
	if l.promptsDir != "" {
		diskPath := filepath.Join(l.promptsDir, name)
		data, err := os.ReadFile(diskPath)
		if err == nil {
			return string(data)
		}
		if !os.IsNotExist(err) {
			log.Printf("[Prompt] Warning: read %q failed: %v; falling back to embedded default", diskPath, err)
		}
	}

	data, err := fs.ReadFile(defaultPrompts, "prompts/"+name)
	if err == nil {
		return string(data)
	}
	return ""
}

// Render loads the named template and substitutes {key} placeholders with
// the given values. Placeholders without a matching key are left as-is.
func (l *Loader) Render(name string, vars map[string]string) string {
	content := l.Load(name)
	for key, val := range vars {
		content = strings.ReplaceAll(content, "{"+key+"}", val)
	}
	return content
}

// Reload clears the cache so subsequent Load calls re-read from disk.
func (l *Loader) Reload() {
	l.mu.Lock()
	l.cache = make(map[string]string)
	l.mu.Unlock()
}
