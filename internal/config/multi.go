package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoConfig = errors.New("no settings profile selected")

// DefaultLabel is the profile created by InitDefaultConfig. It cannot be
// removed.
const DefaultLabel = "Default"

const profileExt = ".yaml"

// ConfigRoot is APPDATA/srcforge on Windows and the XDG config dir
// elsewhere.
func ConfigRoot() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "srcforge")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "srcforge")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "srcforge")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0o755)
}

func profilePath(label string) string {
	return filepath.Join(ConfigsDir(), label+profileExt)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// checkLabel rejects labels that cannot name a file in ConfigsDir.
func checkLabel(label string) error {
	switch {
	case strings.TrimSpace(label) == "":
		return errors.New("label cannot be empty")
	case strings.ContainsAny(label, `/\`) || label == "." || label == "..":
		return fmt.Errorf("invalid label %q", label)
	}

	return nil
}

// existingProfile validates the label and returns the file of an
// existing profile.
func existingProfile(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := profilePath(label)
	if !exists(path) {
		return "", fmt.Errorf("profile %q does not exist", label)
	}

	return path, nil
}

// newProfile validates the label and returns the file for a profile
// that does not exist yet.
func newProfile(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := profilePath(label)
	if exists(path) {
		return "", fmt.Errorf("profile %q already exists", label)
	}

	return path, nil
}

func setCurrent(label string) error {
	return os.WriteFile(CurrentLabelFile(), []byte(label), 0o644)
}

func CurrentLabel() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil || label == "" {
		return "", ErrNoConfig
	}

	return profilePath(label), nil
}

// ConfigPathByLabel returns the file of an existing profile.
func ConfigPathByLabel(label string) (string, error) {
	return existingProfile(label)
}

// Profile is a stored settings file. Settings is nil and Err set when the
// file does not load as valid settings.
type Profile struct {
	Label    string
	Path     string
	Active   bool
	Settings *Settings
	Err      error
}

// ListConfigs loads every profile, sorted by label. A broken profile is
// listed with its error rather than failing the whole list.
func ListConfigs() ([]Profile, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ConfigsDir())
	if err != nil {
		return nil, err
	}

	active, _ := CurrentLabel()
	out := []Profile{}

	for _, e := range entries {
		label, ok := strings.CutSuffix(e.Name(), profileExt)
		if e.IsDir() || !ok {
			continue
		}

		p := Profile{
			Label:  label,
			Path:   filepath.Join(ConfigsDir(), e.Name()),
			Active: label == active,
		}
		p.Settings, p.Err = ReadProfile(p.Path)
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// ValidateProfile loads the profile with the given label and reports why
// it cannot be used, if it cannot.
func ValidateProfile(label string) error {
	path, err := existingProfile(label)
	if err != nil {
		return err
	}

	_, err = ReadProfile(path)
	return err
}

// SwitchConfig makes label the active profile. A profile that does not
// load as valid settings is refused.
func SwitchConfig(label string) error {
	if err := ValidateProfile(label); err != nil {
		return err
	}

	return setCurrent(label)
}

// AddConfig copies a settings file into a new profile. The file is
// rewritten in canonical form, so unknown keys never reach the store.
func AddConfig(label, srcPath string) error {
	dst, err := newProfile(label)
	if err != nil {
		return err
	}

	settings, err := ReadProfile(srcPath)
	if err != nil {
		return err
	}

	return SaveYAML(settings, dst)
}

func CreateEmptyConfig(label string) (string, error) {
	path, err := newProfile(label)
	if err != nil {
		return "", err
	}

	if err := SaveYAML(DefaultSettings(), path); err != nil {
		return "", err
	}

	return path, nil
}

func RenameConfig(oldLabel, newLabel string) error {
	oldPath, err := existingProfile(oldLabel)
	if err != nil {
		return err
	}
	newPath, err := newProfile(newLabel)
	if err != nil {
		return err
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == oldLabel {
		return setCurrent(newLabel)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active profile switches
// back to Default, reported by the returned bool.
func RemoveConfig(label string) (bool, error) {
	if label == DefaultLabel {
		return false, errors.New("cannot remove the Default profile")
	}

	path, err := existingProfile(label)
	if err != nil {
		return false, err
	}

	switched := false
	if active, _ := CurrentLabel(); active == label {
		// Default may itself be broken; removal still goes through.
		if err := setCurrent(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to Default: %w", err)
		}
		switched = true
	}

	return switched, os.Remove(path)
}

// InitDefaultConfig writes the Default profile and activates it. When it
// already exists it is only activated, and os.ErrExist returned.
func InitDefaultConfig() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := profilePath(DefaultLabel)
	if !exists(path) {
		if err := SaveYAML(DefaultSettings(), path); err != nil {
			return "", err
		}
		return path, setCurrent(DefaultLabel)
	}

	if err := setCurrent(DefaultLabel); err != nil {
		return "", err
	}

	return path, os.ErrExist
}
