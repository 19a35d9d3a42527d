package entities

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// PayloadSignatureMode selects how request payloads are signed towards the
// object store.
type PayloadSignatureMode string

const (
	PayloadSignatureFull      PayloadSignatureMode = "full"
	PayloadSignatureStreaming PayloadSignatureMode = "streaming"
	PayloadSignatureUnsigned  PayloadSignatureMode = "unsigned"
)

// ProviderName identifies a supported forge API.
type ProviderName string

const (
	ProviderGitHub  ProviderName = "github"
	ProviderGitLab  ProviderName = "gitlab"
	ProviderForgejo ProviderName = "forgejo"
)

// ErrCredentialNotFound is returned when a repository job references a
// credential name that is not configured.
var ErrCredentialNotFound = errors.New("credential not found")

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Settings is the top-level configuration for gitvault.
type Settings struct {
	Logging      LoggingSettings               `yaml:"logging"`
	Storage      StorageSettings               `yaml:"storage"`
	Credentials  map[string]CredentialSettings `yaml:"credentials"`
	Repositories []RepositoryJob               `yaml:"repositories"`
	Schedule     ScheduleSettings              `yaml:"schedule"`
	WorkingRoot  string                        `yaml:"workingRoot"`

	// Removed configuration surfaces. Kept only to produce a migration
	// error instead of silently ignoring them.
	Backups any `yaml:"backups"`
	Mirrors any `yaml:"mirrors"`
}

// LoggingSettings controls log output.
type LoggingSettings struct {
	LogLevel string `yaml:"logLevel"`
}

// StorageSettings describes the S3-compatible object store and the retention
// policy applied to it.
type StorageSettings struct {
	Endpoint                  string               `yaml:"endpoint"`
	Region                    string               `yaml:"region"`
	AccessKeyID               string               `yaml:"accessKeyId"`
	SecretAccessKey           string               `yaml:"secretAccessKey"`
	Bucket                    string               `yaml:"bucket"`
	ForcePathStyle            bool                 `yaml:"forcePathStyle"`
	PayloadSignatureMode      PayloadSignatureMode `yaml:"payloadSignatureMode"`
	AlwaysCalculateContentMD5 bool                 `yaml:"alwaysCalculateContentMd5"`
	RetentionDays             *int                 `yaml:"retention"`
	RetentionMinimum          *int                 `yaml:"retentionMinimum"`
}

// RetentionEnabled reports whether old snapshots should be pruned at all.
func (it StorageSettings) RetentionEnabled() bool {
	return it.RetentionDays != nil && *it.RetentionDays > 0
}

// EffectiveRetentionMinimum returns the floor on snapshots kept per
// repository. Defaults to 1 and never goes negative.
func (it StorageSettings) EffectiveRetentionMinimum() int {
	if it.RetentionMinimum == nil {
		return 1
	}
	if *it.RetentionMinimum < 0 {
		return 0
	}
	return *it.RetentionMinimum
}

// CredentialSettings is a named credential usable for Git and forge access.
type CredentialSettings struct {
	Username string `yaml:"username"`
	APIKey   string `yaml:"apiKey"`
}

// RepositoryJob is one entry of the repositories list.
type RepositoryJob struct {
	Mode       JobMode `yaml:"mode"`
	Provider   string  `yaml:"provider"`
	Credential string  `yaml:"credential"`
	URL        string  `yaml:"url"`
	BaseURL    string  `yaml:"baseUrl"`
	LFS        bool    `yaml:"lfs"`
	Enabled    *bool   `yaml:"enabled"`
}

// IsEnabled reports whether the job takes part in scheduled runs. Jobs are
// enabled unless explicitly switched off.
func (it RepositoryJob) IsEnabled() bool {
	return it.Enabled == nil || *it.Enabled
}

// ScheduleSettings holds the cron expressions per job family.
type ScheduleSettings struct {
	Repositories JobSchedule `yaml:"repositories"`

	// Removed job families, kept for the migration error only.
	Backups any `yaml:"backups"`
	Mirrors any `yaml:"mirrors"`
}

// JobSchedule is the schedule of a single job family.
type JobSchedule struct {
	Cron string `yaml:"cron"`
}

// LoadSettings reads, expands, and validates a settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", unmarshalErr)
	}

	settings.applyDefaults()
	settings.resolveSecrets()

	if validateErr := validateSettings(&settings); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// FindSettingsFile probes an ordered list of default candidate locations and
// returns the first file that exists.
func FindSettingsFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
		"/etc/gitvault",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config", "gitvault"),
		)
	}

	patterns := []string{
		"gitvault.yaml",
		"gitvault.yml",
		".gitvault.yaml",
		".gitvault.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("settings file not found in default locations")
}

// Credential resolves a credential by name, case-insensitively.
func (it *Settings) Credential(name string) (CredentialSettings, error) {
	for key, credential := range it.Credentials {
		if strings.EqualFold(key, name) {
			return credential, nil
		}
	}
	return CredentialSettings{}, fmt.Errorf("%w: %q", ErrCredentialNotFound, name)
}

// ResolveWorkingRoot returns the local directory owning all bare mirrors.
func (it *Settings) ResolveWorkingRoot() string {
	if it.WorkingRoot != "" {
		return it.WorkingRoot
	}
	return filepath.Join(os.TempDir(), "gitvault")
}

func (it *Settings) applyDefaults() {
	if it.Logging.LogLevel == "" {
		it.Logging.LogLevel = "info"
	}
	if it.Storage.PayloadSignatureMode == "" {
		it.Storage.PayloadSignatureMode = PayloadSignatureFull
	}
}

// resolveSecrets expands ${ENV_VAR} references and secret-file indirection in
// every value that may carry a secret.
func (it *Settings) resolveSecrets() {
	it.Storage.AccessKeyID = resolveSecret(it.Storage.AccessKeyID)
	it.Storage.SecretAccessKey = resolveSecret(it.Storage.SecretAccessKey)
	for name, credential := range it.Credentials {
		credential.APIKey = resolveSecret(credential.APIKey)
		it.Credentials[name] = credential
	}
}

// resolveSecret expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the
// file.
func resolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validateSettings checks for required values and rejects removed
// configuration surfaces.
func validateSettings(settings *Settings) error {
	if err := validateDeprecatedKeys(settings); err != nil {
		return err
	}
	if err := validateLogging(settings.Logging); err != nil {
		return err
	}
	if err := validateStorage(settings.Storage); err != nil {
		return err
	}
	if err := validateRepositories(settings); err != nil {
		return err
	}
	return validateSchedule(settings.Schedule)
}

func validateDeprecatedKeys(settings *Settings) error {
	if settings.Backups != nil || settings.Mirrors != nil {
		return errors.New(
			"the 'backups' and 'mirrors' sections were removed; move every entry into 'repositories' (mode: provider or mode: url)",
		)
	}
	if settings.Schedule.Backups != nil || settings.Schedule.Mirrors != nil {
		return errors.New(
			"'schedule.backups' and 'schedule.mirrors' were removed; use 'schedule.repositories.cron'",
		)
	}
	return nil
}

func validateLogging(logging LoggingSettings) error {
	switch logging.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.logLevel must be one of debug, info, warn, error; got %q", logging.LogLevel)
	}
}

func validateStorage(storage StorageSettings) error {
	if storage.Endpoint == "" {
		return errors.New("storage.endpoint is required")
	}
	if err := validateAbsoluteHTTPURL(storage.Endpoint); err != nil {
		return fmt.Errorf("storage.endpoint: %w", err)
	}
	if storage.Region == "" {
		return errors.New("storage.region is required")
	}
	if storage.AccessKeyID == "" {
		return errors.New("storage.accessKeyId is required")
	}
	if storage.SecretAccessKey == "" {
		return errors.New("storage.secretAccessKey is required")
	}
	if storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}

	switch storage.PayloadSignatureMode {
	case PayloadSignatureFull, PayloadSignatureStreaming, PayloadSignatureUnsigned:
	default:
		return fmt.Errorf(
			"storage.payloadSignatureMode must be one of full, streaming, unsigned; got %q",
			storage.PayloadSignatureMode,
		)
	}

	if storage.RetentionDays != nil && *storage.RetentionDays <= 0 {
		return errors.New("storage.retention must be a positive number of days, or absent to disable retention")
	}
	if storage.RetentionMinimum != nil && *storage.RetentionMinimum < 0 {
		return errors.New("storage.retentionMinimum must not be negative")
	}
	return nil
}

func validateRepositories(settings *Settings) error {
	for i, job := range settings.Repositories {
		switch job.Mode {
		case JobModeProvider:
			if err := validateProviderJob(settings, i, job); err != nil {
				return err
			}
		case JobModeURL:
			if err := validateURLJob(i, job); err != nil {
				return err
			}
		default:
			return fmt.Errorf("repositories[%d].mode must be 'provider' or 'url'; got %q", i, job.Mode)
		}
	}
	return nil
}

func validateProviderJob(settings *Settings, i int, job RepositoryJob) error {
	switch ProviderName(job.Provider) {
	case ProviderGitHub, ProviderGitLab, ProviderForgejo:
	default:
		return fmt.Errorf(
			"repositories[%d].provider must be one of github, gitlab, forgejo; got %q", i, job.Provider,
		)
	}
	if job.Credential == "" {
		return fmt.Errorf("repositories[%d].credential is required for provider mode", i)
	}
	if _, err := settings.Credential(job.Credential); err != nil {
		return fmt.Errorf("repositories[%d]: %w", i, err)
	}
	if job.URL != "" {
		return fmt.Errorf("repositories[%d].url must not be set for provider mode", i)
	}
	if job.BaseURL != "" {
		if err := validateAbsoluteHTTPURL(job.BaseURL); err != nil {
			return fmt.Errorf("repositories[%d].baseUrl: %w", i, err)
		}
	}
	return nil
}

func validateURLJob(i int, job RepositoryJob) error {
	if job.URL == "" {
		return fmt.Errorf("repositories[%d].url is required for url mode", i)
	}
	if err := validateAbsoluteHTTPURL(job.URL); err != nil {
		return fmt.Errorf("repositories[%d].url: %w", i, err)
	}
	if job.Provider != "" {
		return fmt.Errorf("repositories[%d].provider must not be set for url mode", i)
	}
	if job.BaseURL != "" {
		return fmt.Errorf("repositories[%d].baseUrl must not be set for url mode", i)
	}
	return nil
}

func validateSchedule(schedule ScheduleSettings) error {
	if schedule.Repositories.Cron == "" {
		return errors.New("schedule.repositories.cron is required")
	}
	if _, err := ParseCronExpression(schedule.Repositories.Cron); err != nil {
		return fmt.Errorf("schedule.repositories.cron: %w", err)
	}
	return nil
}

func validateAbsoluteHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("must be an absolute http or https URL; got %q", raw)
	}
	return nil
}
