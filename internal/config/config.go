package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the application settings kept in a YAML profile. Source
// configs live in the sqlite store at DBPath, not here.
type Settings struct {
	UserAgent  string        `yaml:"user_agent"`
	Cookie     string        `yaml:"cookie"`
	CookieFile string        `yaml:"cookie_file"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	RateLimit  float64       `yaml:"rate_limit"`
	Debug      bool          `yaml:"debug"`

	DBPath string `yaml:"db_path"`
	Listen string `yaml:"listen"`

	Output         string `yaml:"output"`
	ChapterWorkers int    `yaml:"chapter_workers"`
	ImageWorkers   int    `yaml:"image_workers"`
	SkipBroken     bool   `yaml:"skip_broken"`
	KeepFolders    bool   `yaml:"keep_folders"`
}

// Options are CLI flag values; zero values leave the profile untouched.
type Options struct {
	IgnoreConfig   bool
	Debug          bool
	UserAgent      string
	Cookie         string
	CookieFile     string
	Timeout        time.Duration
	Retries        int
	RateLimit      float64
	DBPath         string
	Listen         string
	Output         string
	ChapterWorkers int
	ImageWorkers   int
	SkipBroken     bool
	KeepFolders    bool
}

func DefaultSettings() *Settings {
	return &Settings{
		Timeout:        30 * time.Second,
		Retries:        0,
		RateLimit:      0,
		DBPath:         DefaultDBPath(),
		Listen:         "127.0.0.1:8080",
		Output:         ".",
		ChapterWorkers: 2,
		ImageWorkers:   5,
	}
}

func DefaultDBPath() string {
	return filepath.Join(ConfigRoot(), "sources.db")
}

func SaveYAML(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func loadYAML(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// ReadProfile loads a settings file strictly: unknown keys are errors
// and the values must pass Validate.
func ReadProfile(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &s, nil
}

// Validate rejects values that normalize cannot repair.
func (s *Settings) Validate() error {
	if s.Listen != "" {
		if _, _, err := net.SplitHostPort(s.Listen); err != nil {
			return fmt.Errorf("listen %q: %w", s.Listen, err)
		}
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %g", s.RateLimit)
	}
	if s.ChapterWorkers < 0 || s.ImageWorkers < 0 {
		return errors.New("chapter_workers and image_workers must not be negative")
	}

	return nil
}

// LoadMerged returns the active profile with flags applied on top. The
// second value says where the settings came from.
func LoadMerged(opts Options) (*Settings, string, error) {
	if opts.IgnoreConfig {
		s := DefaultSettings()
		merge(s, opts)
		normalize(s)
		return s, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		s := DefaultSettings()
		merge(s, opts)
		normalize(s)
		return s, "(default settings in memory, run `srcforge settings init` to create a profile)", nil
	}
	if err != nil {
		return nil, "", err
	}

	s, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load settings %s: %w", activePath, err)
	}

	merge(s, opts)
	normalize(s)

	return s, activePath, nil
}

func merge(s *Settings, o Options) {
	if o.Debug {
		s.Debug = true
	}
	if o.UserAgent != "" {
		s.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		s.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		s.CookieFile = o.CookieFile
	}
	if o.Timeout != 0 {
		s.Timeout = o.Timeout
	}
	if o.Retries != 0 {
		s.Retries = o.Retries
	}
	if o.RateLimit != 0 {
		s.RateLimit = o.RateLimit
	}
	if o.DBPath != "" {
		s.DBPath = o.DBPath
	}
	if o.Listen != "" {
		s.Listen = o.Listen
	}
	if o.Output != "" {
		s.Output = o.Output
	}
	if o.ChapterWorkers != 0 {
		s.ChapterWorkers = o.ChapterWorkers
	}
	if o.ImageWorkers != 0 {
		s.ImageWorkers = o.ImageWorkers
	}
	if o.SkipBroken {
		s.SkipBroken = true
	}
	if o.KeepFolders {
		s.KeepFolders = true
	}
}

func normalize(s *Settings) {
	if s.Output == "" {
		s.Output = "."
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Retries < 0 {
		s.Retries = 0
	}
	if s.DBPath == "" {
		s.DBPath = DefaultDBPath()
	}
	if s.Listen == "" {
		s.Listen = "127.0.0.1:8080"
	}
	if s.ImageWorkers <= 0 {
		s.ImageWorkers = 5
	}
	if s.ChapterWorkers <= 0 {
		s.ChapterWorkers = 2
	}
}

func (s *Settings) Print(w io.Writer) {
	fmt.Fprintf(w, " -db_path: %s\n", s.DBPath)
	fmt.Fprintf(w, " -output: %s\n", s.Output)
	fmt.Fprintf(w, " -timeout: %s\n", s.Timeout)
	fmt.Fprintf(w, " -chapter_workers: %d\n", s.ChapterWorkers)
	fmt.Fprintf(w, " -image_workers: %d\n", s.ImageWorkers)
	fmt.Fprintf(w, " -listen: %s\n", s.Listen)
	if s.Retries > 0 {
		fmt.Fprintf(w, " -retries: %d\n", s.Retries)
	}
	if s.RateLimit > 0 {
		fmt.Fprintf(w, " -rate_limit: %g/s\n", s.RateLimit)
	}
	if s.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", s.UserAgent)
	}
	if s.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", s.CookieFile)
	}
	if s.Cookie != "" {
		fmt.Fprintf(w, " -cookie: (set)\n")
	}
	if s.Debug {
		fmt.Fprintf(w, " -debug: %t\n", s.Debug)
	}
	if s.SkipBroken {
		fmt.Fprintf(w, " -skip_broken: %t\n", s.SkipBroken)
	}
	if s.KeepFolders {
		fmt.Fprintf(w, " -keep_folders: %t\n", s.KeepFolders)
	}
}
