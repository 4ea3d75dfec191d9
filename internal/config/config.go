package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/newapi-signin/internal/logger"
	"github.com/oshokin/newapi-signin/internal/service/signin"
)

// Config holds all configuration settings.
type Config struct {
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// Headless runs the browser without a window.
	Headless bool `mapstructure:"headless"`
	// ChromePath points to a Chrome binary; empty means a system or downloaded one.
	ChromePath string `mapstructure:"chrome_path"`
	// UserAgent overrides the browser and HTTP client User-Agent.
	UserAgent string `mapstructure:"user_agent"`
	// SessionStore selects where snapshots live: "file" or "redis".
	SessionStore string `mapstructure:"session_store"`
	// CacheDir is the snapshot directory of the file store.
	CacheDir string `mapstructure:"cache_dir"`
	// RedisURL is the redis:// URL of the redis store.
	RedisURL string `mapstructure:"redis_url"`
	// RedisPrefix is prepended to every redis key.
	RedisPrefix string `mapstructure:"redis_prefix"`
	// RedisTTL expires redis snapshots (e.g., "720h"); empty keeps them forever.
	RedisTTL string `mapstructure:"redis_ttl"`
	// ScreenshotsDir receives failure screenshots; empty disables them.
	ScreenshotsDir string `mapstructure:"screenshots_dir"`
	// PageDumpsDir receives failure page dumps; empty disables them.
	PageDumpsDir string `mapstructure:"page_dumps_dir"`
	// OutputPath is the YAML file sign-in results are written to.
	OutputPath string `mapstructure:"output_path"`
	// NavigationTimeout bounds one page navigation (e.g., "30s").
	NavigationTimeout string `mapstructure:"navigation_timeout"`
	// MaxAccountPause is the upper bound of the random pause between two sign-ins (e.g., "5s").
	MaxAccountPause string `mapstructure:"max_account_pause"`
	// PromptSecrets asks on the terminal for codes no other channel supplied.
	PromptSecrets bool `mapstructure:"prompt_secrets"`
	// Timeouts overrides the waits of the sign-in flow.
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	// Providers overrides or extends the built-in relying parties.
	Providers map[string]RelyingPartyConfig `mapstructure:"providers"`
	// Accounts lists the accounts to sign in.
	Accounts []AccountConfig `mapstructure:"accounts"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedRedisTTL is the parsed redis expiry.
	ParsedRedisTTL time.Duration
	// ParsedNavigationTimeout is the parsed navigation timeout.
	ParsedNavigationTimeout time.Duration
	// ParsedMaxAccountPause is the parsed pause bound; zero disables pausing.
	ParsedMaxAccountPause time.Duration
	// ParsedTimeouts are the parsed flow timeouts; zero fields keep their defaults.
	ParsedTimeouts signin.Timeouts
	// ParsedProviders are the built-in relying parties merged with Providers.
	ParsedProviders map[string]RelyingPartyConfig
}

// TimeoutsConfig holds the flow timeouts as duration strings.
type TimeoutsConfig struct {
	LoginSettle          string `mapstructure:"login_settle"`
	InterstitialSettle   string `mapstructure:"interstitial_settle"`
	SecretRequest        string `mapstructure:"secret_request"`
	SecondFactorRedirect string `mapstructure:"second_factor_redirect"`
	ManualSecondFactor   string `mapstructure:"manual_second_factor"`
	Challenge            string `mapstructure:"challenge"`
	Consent              string `mapstructure:"consent"`
	Callback             string `mapstructure:"callback"`
	Identity             string `mapstructure:"identity"`
	Capture              string `mapstructure:"capture"`
	PollInterval         string `mapstructure:"poll_interval"`
}

// RelyingPartyConfig describes one new-api compatible site.
type RelyingPartyConfig struct {
	// Origin is the site origin, e.g. "https://anyrouter.top".
	Origin string `mapstructure:"origin" yaml:"origin"`
	// AuthStatePath is the path of the OAuth state endpoint.
	AuthStatePath string `mapstructure:"auth_state_path" yaml:"auth_state_path"`
	// GitHubClientID is the site's GitHub OAuth client id; empty means discover it.
	GitHubClientID string `mapstructure:"github_client_id" yaml:"github_client_id"`
	// LinuxDoClientID is the site's Linux.do client id; empty means discover it.
	LinuxDoClientID string `mapstructure:"linuxdo_client_id" yaml:"linuxdo_client_id"`
}

// AccountConfig is one account at one relying party.
type AccountConfig struct {
	// Name identifies the account in logs, cache keys and results.
	Name string `mapstructure:"name" yaml:"name"`
	// Provider is the relying party name, "anyrouter" by default.
	Provider string `mapstructure:"provider" yaml:"provider"`
	// GitHub holds GitHub credentials; nil skips GitHub sign-in.
	GitHub *CredentialsConfig `mapstructure:"github" yaml:"github"`
	// LinuxDo holds Linux.do credentials; nil skips Linux.do sign-in.
	LinuxDo *CredentialsConfig `mapstructure:"linuxdo" yaml:"linuxdo"`
}

// CredentialsConfig authenticates an account at an identity provider.
// Values may reference environment variables as $NAME or ${NAME}.
type CredentialsConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	// TOTPSecret is the base32 authenticator seed used to generate codes.
	TOTPSecret string `mapstructure:"totp_secret" yaml:"totp_secret"`
	// OTP is a fixed one-time code, useful for a single manual run.
	OTP string `mapstructure:"otp" yaml:"otp"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".newapi-signin.yaml"

	// DefaultEnvFilename is loaded into the environment before the configuration is read.
	DefaultEnvFilename = ".env"

	// EnvPrefix prefixes every environment override, e.g. NEWAPI_SIGNIN_LOG_LEVEL.
	EnvPrefix = "NEWAPI_SIGNIN"

	// DefaultProvider is the relying party of accounts that do not name one.
	DefaultProvider = "anyrouter"

	// SessionStoreFile keeps snapshots as JSON files.
	SessionStoreFile = "file"
	// SessionStoreRedis keeps snapshots in redis.
	SessionStoreRedis = "redis"

	// AccountsEnv carries a JSON or YAML list of accounts replacing the configured ones.
	AccountsEnv = "ACCOUNTS"
	// ProvidersEnv carries a JSON or YAML map of relying parties extending the configured ones.
	ProvidersEnv = "PROVIDERS"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownSessionStore indicates an unsupported session_store value.
	ErrUnknownSessionStore = errors.New("unknown session store")
	// ErrEmptyRedisURL indicates the redis store is selected without a URL.
	ErrEmptyRedisURL = errors.New("redis_url cannot be empty when session_store is redis")
	// ErrEmptyCacheDir indicates the file store is selected without a directory.
	ErrEmptyCacheDir = errors.New("cache_dir cannot be empty when session_store is file")
	// ErrInvalidDuration indicates a duration that is not positive.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrNoAccounts indicates that no account is configured.
	ErrNoAccounts = errors.New("no accounts configured")
	// ErrDuplicateAccount indicates two accounts share a name.
	ErrDuplicateAccount = errors.New("duplicate account name")
	// ErrUnknownProvider indicates an account references a missing relying party.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNoCredentials indicates an account without usable credentials.
	ErrNoCredentials = errors.New("account must have github or linuxdo credentials")
	// ErrIncompleteCredentials indicates credentials without a username or password.
	ErrIncompleteCredentials = errors.New("username and password are required")
	// ErrEmptyOrigin indicates a relying party without an origin.
	ErrEmptyOrigin = errors.New("provider origin cannot be empty")
	// ErrUnknownAccount indicates a requested account that is not configured.
	ErrUnknownAccount = errors.New("unknown account")
)

// DefaultProviders returns the built-in relying parties.
func DefaultProviders() map[string]RelyingPartyConfig {
	return map[string]RelyingPartyConfig{
		"anyrouter": {
			Origin:          "https://anyrouter.top",
			AuthStatePath:   "/api/oauth/state",
			GitHubClientID:  "Ov23liOwlnIiYoF3bUqw",
			LinuxDoClientID: "8w2uZtoWH9AUXrZr1qeCEEmvXLafea3c",
		},
		"agentrouter": {
			Origin:          "https://agentrouter.org",
			AuthStatePath:   "/api/oauth/state",
			GitHubClientID:  "Ov23lidtiR4LeVZvVRNL",
			LinuxDoClientID: "KZUecGfhhDZMVnv8UtEdhOhf9sNOhqVX",
		},
		"wong": {
			Origin:          "https://wzw.de5.net",
			AuthStatePath:   "/api/oauth/state",
			LinuxDoClientID: "dnJe0SrrGDT8dh4hkbl2bo9R7SQx5If5",
		},
	}
}

// LoadConfig loads configuration settings from a YAML file, the .env file and the environment.
// A missing default file is tolerated; a missing explicit file is an error.
func LoadConfig(configFilename string) (*Config, error) {
	if err := godotenv.Load(DefaultEnvFilename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFilename, err)
	}

	explicit := configFilename != ""
	if !explicit {
		configFilename = DefaultConfigFilename
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configFilename)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := loadFromEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("headless", false)
	v.SetDefault("session_store", SessionStoreFile)
	v.SetDefault("cache_dir", "storage-states")
	v.SetDefault("screenshots_dir", "screenshots")
	v.SetDefault("page_dumps_dir", "logs")
	v.SetDefault("output_path", "signin-results.yaml")
	v.SetDefault("navigation_timeout", "30s")
	v.SetDefault("max_account_pause", "5s")
	v.SetDefault("prompt_secrets", true)

	// Keys without a value still need registering, otherwise AutomaticEnv never reaches them.
	for _, key := range []string{"chrome_path", "user_agent", "redis_url", "redis_prefix", "redis_ttl"} {
		v.SetDefault(key, "")
	}

	for _, key := range []string{
		"login_settle", "interstitial_settle", "secret_request", "second_factor_redirect",
		"manual_second_factor", "challenge", "consent", "callback", "identity", "capture",
		"poll_interval",
	} {
		v.SetDefault("timeouts."+key, "")
	}
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// loadFromEnv reads accounts and providers documents from the environment.
// Environment documents replace file accounts and extend file providers.
func loadFromEnv(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv(AccountsEnv)); raw != "" {
		var accounts []AccountConfig
		if err := yaml.Unmarshal([]byte(raw), &accounts); err != nil {
			return fmt.Errorf("failed to parse %s: %w", AccountsEnv, err)
		}

		cfg.Accounts = accounts
	}

	if raw := strings.TrimSpace(os.Getenv(ProvidersEnv)); raw != "" {
		var providers map[string]RelyingPartyConfig
		if err := yaml.Unmarshal([]byte(raw), &providers); err != nil {
			return fmt.Errorf("failed to parse %s: %w", ProvidersEnv, err)
		}

		if cfg.Providers == nil {
			cfg.Providers = make(map[string]RelyingPartyConfig, len(providers))
		}

		for name, provider := range providers {
			cfg.Providers[name] = provider
		}
	}

	return nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	switch strings.ToLower(strings.TrimSpace(cfg.SessionStore)) {
	case "", SessionStoreFile:
		cfg.SessionStore = SessionStoreFile

		if strings.TrimSpace(cfg.CacheDir) == "" {
			return ErrEmptyCacheDir
		}
	case SessionStoreRedis:
		cfg.SessionStore = SessionStoreRedis

		if strings.TrimSpace(cfg.RedisURL) == "" {
			return ErrEmptyRedisURL
		}
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownSessionStore, cfg.SessionStore)
	}

	if cfg.ParsedRedisTTL, err = parseOptionalDuration("redis_ttl", cfg.RedisTTL); err != nil {
		return err
	}

	if cfg.ParsedNavigationTimeout, err = parseOptionalDuration("navigation_timeout", cfg.NavigationTimeout); err != nil {
		return err
	}

	if cfg.ParsedMaxAccountPause, err = parseOptionalDuration("max_account_pause", cfg.MaxAccountPause); err != nil {
		return err
	}

	if cfg.ParsedTimeouts, err = parseTimeouts(cfg.Timeouts); err != nil {
		return err
	}

	if cfg.ParsedProviders, err = mergeProviders(cfg.Providers); err != nil {
		return err
	}

	return validateAccounts(cfg)
}

func parseTimeouts(raw TimeoutsConfig) (signin.Timeouts, error) {
	var (
		parsed signin.Timeouts
		err    error
	)

	fields := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"timeouts.login_settle", raw.LoginSettle, &parsed.LoginSettle},
		{"timeouts.interstitial_settle", raw.InterstitialSettle, &parsed.InterstitialSettle},
		{"timeouts.secret_request", raw.SecretRequest, &parsed.SecretRequest},
		{"timeouts.second_factor_redirect", raw.SecondFactorRedirect, &parsed.SecondFactorRedirect},
		{"timeouts.manual_second_factor", raw.ManualSecondFactor, &parsed.ManualSecondFactor},
		{"timeouts.challenge", raw.Challenge, &parsed.Challenge},
		{"timeouts.consent", raw.Consent, &parsed.Consent},
		{"timeouts.callback", raw.Callback, &parsed.Callback},
		{"timeouts.identity", raw.Identity, &parsed.Identity},
		{"timeouts.capture", raw.Capture, &parsed.Capture},
		{"timeouts.poll_interval", raw.PollInterval, &parsed.PollInterval},
	}

	for _, field := range fields {
		if *field.target, err = parseOptionalDuration(field.name, field.value); err != nil {
			return signin.Timeouts{}, err
		}
	}

	return parsed, nil
}

// parseOptionalDuration parses value; an empty value yields zero.
func parseOptionalDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, name)
	}

	return parsed, nil
}

// mergeProviders overlays configured relying parties on the built-in ones field by field.
func mergeProviders(overrides map[string]RelyingPartyConfig) (map[string]RelyingPartyConfig, error) {
	merged := DefaultProviders()

	for name, override := range overrides {
		name = strings.ToLower(strings.TrimSpace(name))
		provider := merged[name]

		if override.Origin != "" {
			provider.Origin = override.Origin
		}

		if override.AuthStatePath != "" {
			provider.AuthStatePath = override.AuthStatePath
		}

		if override.GitHubClientID != "" {
			provider.GitHubClientID = override.GitHubClientID
		}

		if override.LinuxDoClientID != "" {
			provider.LinuxDoClientID = override.LinuxDoClientID
		}

		if provider.Origin == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrEmptyOrigin, name)
		}

		provider.Origin = strings.TrimRight(provider.Origin, "/")
		merged[name] = provider
	}

	return merged, nil
}

func validateAccounts(cfg *Config) error {
	if len(cfg.Accounts) == 0 {
		return ErrNoAccounts
	}

	seen := make(map[string]struct{}, len(cfg.Accounts))

	for i := range cfg.Accounts {
		account := &cfg.Accounts[i]

		account.Name = strings.TrimSpace(account.Name)
		if account.Name == "" {
			account.Name = fmt.Sprintf("Account %d", i+1)
		}

		if _, ok := seen[account.Name]; ok {
			return fmt.Errorf("%w: '%s'", ErrDuplicateAccount, account.Name)
		}

		seen[account.Name] = struct{}{}

		account.Provider = strings.ToLower(strings.TrimSpace(account.Provider))
		if account.Provider == "" {
			account.Provider = DefaultProvider
		}

		if _, ok := cfg.ParsedProviders[account.Provider]; !ok {
			return fmt.Errorf("%w: account '%s' uses '%s'", ErrUnknownProvider, account.Name, account.Provider)
		}

		if account.GitHub == nil && account.LinuxDo == nil {
			return fmt.Errorf("%w: '%s'", ErrNoCredentials, account.Name)
		}

		for _, credentials := range []*CredentialsConfig{account.GitHub, account.LinuxDo} {
			if credentials == nil {
				continue
			}

			credentials.expand()

			if credentials.Username == "" || credentials.Password == "" {
				return fmt.Errorf("%w: '%s'", ErrIncompleteCredentials, account.Name)
			}
		}
	}

	return nil
}

func (c *CredentialsConfig) expand() {
	c.Username = strings.TrimSpace(os.ExpandEnv(c.Username))
	c.Password = os.ExpandEnv(c.Password)
	c.TOTPSecret = strings.TrimSpace(os.ExpandEnv(c.TOTPSecret))
	c.OTP = strings.TrimSpace(os.ExpandEnv(c.OTP))
}

// SelectAccounts returns the accounts with the given names in configuration order.
// No names select every account.
func (cfg *Config) SelectAccounts(names []string) ([]AccountConfig, error) {
	if len(names) == 0 {
		return cfg.Accounts, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = false
	}

	selected := make([]AccountConfig, 0, len(names))

	for _, account := range cfg.Accounts {
		if _, ok := wanted[account.Name]; ok {
			wanted[account.Name] = true
			selected = append(selected, account)
		}
	}

	for _, name := range names {
		if !wanted[strings.TrimSpace(name)] {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownAccount, name)
		}
	}

	return selected, nil
}

// Methods returns the identity providers configured for the account, GitHub first.
func (a AccountConfig) Methods() []string {
	methods := make([]string, 0, 2) //nolint:mnd // Two identity providers.

	if a.GitHub != nil {
		methods = append(methods, signin.ProviderGitHub)
	}

	if a.LinuxDo != nil {
		methods = append(methods, signin.ProviderLinuxDo)
	}

	return methods
}

// Credentials returns the credentials for an identity provider.
func (a AccountConfig) Credentials(method string) *CredentialsConfig {
	switch method {
	case signin.ProviderGitHub:
		return a.GitHub
	case signin.ProviderLinuxDo:
		return a.LinuxDo
	default:
		return nil
	}
}

// ClientID returns the configured client id of the relying party for an identity provider.
func (p RelyingPartyConfig) ClientID(method string) string {
	switch method {
	case signin.ProviderGitHub:
		return p.GitHubClientID
	case signin.ProviderLinuxDo:
		return p.LinuxDoClientID
	default:
		return ""
	}
}
