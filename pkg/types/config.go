package types

import (
	"time"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// AppConfig is the root configuration for mailtriage
type AppConfig struct {
	DebugMode  bool `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool `key:"prettyLogs" json:"pretty_logs"`

	Database DatabaseConfig    `key:"database" json:"database"`
	Gateway  GatewayConfig     `key:"gateway" json:"gateway"`
	Session  SessionConfig     `key:"session" json:"session"`
	OAuth    GoogleOAuthConfig `key:"oauth" json:"oauth"`
	Mail     MailConfig        `key:"mail" json:"mail"`
	LLM      LLMConfig         `key:"llm" json:"llm"`
	Export   ExportConfig      `key:"export" json:"export"`
}

// ----------------------------------------------------------------------------
// Database Configuration
// ----------------------------------------------------------------------------

type DatabaseConfig struct {
	Redis RedisConfig `key:"redis" json:"redis"`
}

type RedisMode string

const (
	RedisModeSingle  RedisMode = "single"
	RedisModeCluster RedisMode = "cluster"
)

type RedisConfig struct {
	Mode               RedisMode     `key:"mode" json:"mode"`
	Addrs              []string      `key:"addrs" json:"addrs"`
	Username           string        `key:"username" json:"username"`
	Password           string        `key:"password" json:"password"`
	ClientName         string        `key:"clientName" json:"client_name"`
	EnableTLS          bool          `key:"enableTLS" json:"enable_tls"`
	InsecureSkipVerify bool          `key:"insecureSkipVerify" json:"insecure_skip_verify"`
	PoolSize           int           `key:"poolSize" json:"pool_size"`
	MinIdleConns       int           `key:"minIdleConns" json:"min_idle_conns"`
	MaxIdleConns       int           `key:"maxIdleConns" json:"max_idle_conns"`
	ConnMaxIdleTime    time.Duration `key:"connMaxIdleTime" json:"conn_max_idle_time"`
	ConnMaxLifetime    time.Duration `key:"connMaxLifetime" json:"conn_max_lifetime"`
	DialTimeout        time.Duration `key:"dialTimeout" json:"dial_timeout"`
	ReadTimeout        time.Duration `key:"readTimeout" json:"read_timeout"`
	WriteTimeout       time.Duration `key:"writeTimeout" json:"write_timeout"`
	MaxRedirects       int           `key:"maxRedirects" json:"max_redirects"`
	MaxRetries         int           `key:"maxRetries" json:"max_retries"`
	RouteByLatency     bool          `key:"routeByLatency" json:"route_by_latency"`
}

// IsConfigured returns true if at least one Redis address is set
func (c RedisConfig) IsConfigured() bool {
	return len(c.Addrs) > 0 && c.Addrs[0] != ""
}

// ----------------------------------------------------------------------------
// Gateway Configuration
// ----------------------------------------------------------------------------

type GatewayConfig struct {
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
}

type HTTPConfig struct {
	Host             string `key:"host" json:"host"`
	Port             int    `key:"port" json:"port"`
	EnablePrettyLogs bool   `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	EnableMetrics    bool   `key:"enableMetrics" json:"enable_metrics"`
}

// ----------------------------------------------------------------------------
// Session Configuration
// ----------------------------------------------------------------------------

// SessionConfig configures the browser session cookie and its server-side store
type SessionConfig struct {
	Secret     string        `key:"secret" json:"secret"`
	CookieName string        `key:"cookieName" json:"cookie_name"`
	TTL        time.Duration `key:"ttl" json:"ttl"`
	Store      string        `key:"store" json:"store"` // "memory" or "redis"
	MaxEntries int           `key:"maxEntries" json:"max_entries"`
}

// UsesRedis returns true if sessions should be kept in Redis
func (c SessionConfig) UsesRedis() bool {
	return c.Store == SessionStoreRedis
}

// ----------------------------------------------------------------------------
// OAuth Configuration
// ----------------------------------------------------------------------------

// GoogleOAuthConfig configures the Gmail authorization flow. Either the inline
// client fields or CredentialsFile (a credentials.json from the Google Cloud
// console) must be set.
type GoogleOAuthConfig struct {
	ClientID        string   `key:"clientId" json:"client_id"`
	ClientSecret    string   `key:"clientSecret" json:"client_secret"`
	RedirectURL     string   `key:"redirectUrl" json:"redirect_url"`
	CredentialsFile string   `key:"credentialsFile" json:"credentials_file"`
	Scopes          []string `key:"scopes" json:"scopes"`
}

// IsConfigured returns true if enough is set to build an OAuth client
func (c GoogleOAuthConfig) IsConfigured() bool {
	if c.CredentialsFile != "" {
		return true
	}
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// ----------------------------------------------------------------------------
// Mail Configuration
// ----------------------------------------------------------------------------

type MailConfig struct {
	UserID       string        `key:"userId" json:"user_id"`
	PageSize     int64         `key:"pageSize" json:"page_size"`
	MaxMessages  int           `key:"maxMessages" json:"max_messages"` // 0 = no cap
	MaxPartDepth int           `key:"maxPartDepth" json:"max_part_depth"`
	TimeZone     string        `key:"timeZone" json:"time_zone"`
	Timeout      time.Duration `key:"timeout" json:"timeout"`
	Endpoint     string        `key:"endpoint" json:"endpoint,omitempty"`
}

// Location resolves TimeZone, falling back to the local zone
func (c MailConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ----------------------------------------------------------------------------
// LLM Configuration
// ----------------------------------------------------------------------------

type LLMConfig struct {
	APIKey       string        `key:"apiKey" json:"api_key"`
	BaseURL      string        `key:"baseUrl" json:"base_url,omitempty"`
	Model        string        `key:"model" json:"model"`
	Temperature  float64       `key:"temperature" json:"temperature"`
	MaxBodyChars int           `key:"maxBodyChars" json:"max_body_chars"`
	Timeout      time.Duration `key:"timeout" json:"timeout"`
}

// Redact returns a copy of LLMConfig that is safe to log
func (c LLMConfig) Redact() LLMConfig {
	if c.APIKey != "" {
		c.APIKey = "[REDACTED]"
	}
	return c
}

// ----------------------------------------------------------------------------
// Export Configuration
// ----------------------------------------------------------------------------

type ExportConfig struct {
	Path     string `key:"path" json:"path"`
	FileName string `key:"fileName" json:"file_name"`
	BOM      bool   `key:"bom" json:"bom"`
}
