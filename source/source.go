//
// resolve a PNG source given on the command line
//

// Package source loads PNG files from a local path or a URL and decides
// where the modified file is written.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

const (
	// DirEnvKey names the directory receiving files derived from URL sources.
	DirEnvKey = "EDMIPNG_DIR"

	defaultFileName     = "png_file"
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 5
)

// Config controls fetching and output path derivation.
type Config struct {
	Dir          string        // output directory for URL sources; empty means working directory
	Timeout      time.Duration // read/write timeout of URL fetches
	MaxRedirects int
}

// ConfigFromEnv returns the default configuration with Dir taken from EDMIPNG_DIR.
func ConfigFromEnv() Config {
	return Config{
		Dir:          os.Getenv(DirEnvKey),
		Timeout:      defaultTimeout,
		MaxRedirects: defaultMaxRedirects,
	}
}

// Source is either a local file path or a remote URL.
type Source struct {
	Path string
	URL  *fasthttp.URI // nil for path sources
}

// Parse classifies s. A string naming an existing file is a path; anything
// else must be an absolute http or https URL.
//
// The check is a heuristic: a string valid both as a relative path and as a
// URL is a path only if the file exists at the time of the call.
func Parse(s string) (src *Source, err error) {
	if _, e := os.Stat(s); e == nil {
		return &Source{Path: s}, nil
	}

	uri := &fasthttp.URI{}
	if err = uri.Parse(nil, []byte(s)); err != nil {
		err = errors.Wrapf(err, "%q is neither an existing file nor a URL", s)
		return
	}
	scheme := string(uri.Scheme())
	if !strings.Contains(s, "://") || (scheme != "http" && scheme != "https") || len(uri.Host()) == 0 {
		err = errors.Errorf("%q is neither an existing file nor an http(s) URL", s)
		return
	}
	return &Source{URL: uri}, nil
}

// IsURL reports whether the source is remote.
func (s *Source) IsURL() bool { return s.URL != nil }

func (s *Source) String() string {
	if s.IsURL() {
		return s.URL.String()
	}
	return s.Path
}

// Load reads the whole source into memory.
func (s *Source) Load(f Fetcher) ([]byte, error) {
	if !s.IsURL() {
		b, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, errors.Wrap(err, "read png file")
		}
		return b, nil
	}
	b, err := f.Fetch(s.URL.String())
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", s.URL)
	}
	return b, nil
}

// OutputPath returns where the modified file is written. Path sources are
// modified in place. URL sources get a new file named after the last path
// segment and the current time, in cfg.Dir if set.
func (s *Source) OutputPath(cfg Config, now time.Time) (string, error) {
	if !s.IsURL() {
		return s.Path, nil
	}

	name := string(s.URL.LastPathSegment())
	name = strings.TrimSuffix(name, ".png")
	if name == "" {
		name = defaultFileName
	}
	fullName := fmt.Sprintf("%s_%d.png", name, now.Unix())

	if cfg.Dir == "" {
		return fullName, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return "", errors.Wrap(err, "create output directory")
	}
	return filepath.Join(cfg.Dir, fullName), nil
}
