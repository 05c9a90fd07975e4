package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Session cookie and token lifetime
	SessionCookieName string
	SessionTTLHours   int
	// Database: DBDriver is mysql, postgres or sqlite. DatabaseURI wins over
	// the discrete fields when set.
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Page cache: backend is memory or redis; windows are in seconds and
	// zero disables caching for that view.
	CacheBackend      string
	IndexCacheSeconds int
	GroupCacheSeconds int
	// Redis for the page cache and token blacklist
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Admins
	AdminUsernames []string
}

// IsAdmin reports whether username is listed in AdminUsernames.
func (c AppConfig) IsAdmin(username string) bool {
	for _, a := range c.AdminUsernames {
		if strings.EqualFold(a, username) {
			return true
		}
	}
	return false
}

// fileConfig mirrors the grouped layout of config.json / config.yaml.
type fileConfig struct {
	App struct {
		AppPort            string   `json:"AppPort" yaml:"AppPort"`
		JWTSecret          string   `json:"JWTSecret" yaml:"JWTSecret"`
		RateLimitPerMinute int      `json:"RateLimitPerMinute" yaml:"RateLimitPerMinute"`
		AllowedOrigins     []string `json:"AllowedOrigins" yaml:"AllowedOrigins"`
		SessionCookieName  string   `json:"SessionCookieName" yaml:"SessionCookieName"`
		SessionTTLHours    int      `json:"SessionTTLHours" yaml:"SessionTTLHours"`
		AdminUsernames     []string `json:"AdminUsernames" yaml:"AdminUsernames"`
	} `json:"app" yaml:"app"`
	Database struct {
		DBDriver    string `json:"DBDriver" yaml:"DBDriver"`
		DatabaseURI string `json:"DatabaseURI" yaml:"DatabaseURI"`
		DBHost      string `json:"DBHost" yaml:"DBHost"`
		DBPort      string `json:"DBPort" yaml:"DBPort"`
		DBUser      string `json:"DBUser" yaml:"DBUser"`
		DBPassword  string `json:"DBPassword" yaml:"DBPassword"`
		DBName      string `json:"DBName" yaml:"DBName"`
	} `json:"database" yaml:"database"`
	Cache struct {
		Backend           string `json:"Backend" yaml:"Backend"`
		IndexCacheSeconds *int   `json:"IndexCacheSeconds" yaml:"IndexCacheSeconds"`
		GroupCacheSeconds *int   `json:"GroupCacheSeconds" yaml:"GroupCacheSeconds"`
	} `json:"cache" yaml:"cache"`
	Redis struct {
		RedisHost     string `json:"RedisHost" yaml:"RedisHost"`
		RedisPort     int    `json:"RedisPort" yaml:"RedisPort"`
		RedisDB       int    `json:"RedisDB" yaml:"RedisDB"`
		RedisPassword string `json:"RedisPassword" yaml:"RedisPassword"`
	} `json:"redis" yaml:"redis"`
	Log struct {
		Level      string `json:"Level" yaml:"Level"`
		Path       string `json:"Path" yaml:"Path"`
		GinMode    string `json:"GinMode" yaml:"GinMode"`
		GinPath    string `json:"GinPath" yaml:"GinPath"`
		MaxSizeMB  int    `json:"MaxSizeMB" yaml:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups" yaml:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays" yaml:"MaxAgeDays"`
		Compress   bool   `json:"Compress" yaml:"Compress"`
	} `json:"log" yaml:"log"`
	Admin struct {
		Usernames []string `json:"Usernames" yaml:"Usernames"`
	} `json:"admin" yaml:"admin"`
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	mu.RLock()
	if loaded {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()

	c, err := LoadFrom("config")
	if err != nil {
		log.Fatal(err)
	}
	Set(c)
	return c
}

// LoadFrom builds a configuration from the files in dir.
//
// Precedence: .env (process environment) -> config.json or config.yaml ->
// defaults -> environment variable overrides.
func LoadFrom(dir string) (AppConfig, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Negative cache windows mean "not configured"; zero is a valid,
	// uncached window.
	c := AppConfig{IndexCacheSeconds: -1, GroupCacheSeconds: -1}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		ok, err := loadFile(path, &c)
		if err != nil {
			return AppConfig{}, fmt.Errorf("load %s: %w", path, err)
		}
		if ok {
			break
		}
	}

	applyDefaults(&c)
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}

	if c.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in environment variables or the config file")
	}
	return c, nil
}

// Set installs c as the process configuration.
func Set(c AppConfig) {
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	if loaded {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()
	return Load()
}

// loadFile decodes path into out. It reports false when the file is absent.
func loadFile(path string, out *AppConfig) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return false, err
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.SessionCookieName = fc.App.SessionCookieName
	out.SessionTTLHours = fc.App.SessionTTLHours
	out.AdminUsernames = fc.App.AdminUsernames
	// Support configuring admins in their own section as well
	if len(fc.Admin.Usernames) > 0 {
		out.AdminUsernames = fc.Admin.Usernames
	}

	out.DBDriver = fc.Database.DBDriver
	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName

	out.CacheBackend = fc.Cache.Backend
	// Window keys are pointers so an explicit 0 survives defaulting.
	if fc.Cache.IndexCacheSeconds != nil {
		out.IndexCacheSeconds = *fc.Cache.IndexCacheSeconds
	}
	if fc.Cache.GroupCacheSeconds != nil {
		out.GroupCacheSeconds = *fc.Cache.GroupCacheSeconds
	}

	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.GinMode = fc.Log.GinMode
	out.GinPath = fc.Log.GinPath
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress
	return true, nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = "yatube_session"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.DBDriver == "sqlite" && c.DatabaseURI == "" && c.DBName == "" {
		c.DBName = "yatube.db"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		switch c.DBDriver {
		case "postgres":
			c.DBPort = "5432"
		default:
			c.DBPort = "3306"
		}
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "yatube"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = "memory"
	}
	if c.IndexCacheSeconds < 0 {
		c.IndexCacheSeconds = 20
	}
	if c.GroupCacheSeconds < 0 {
		c.GroupCacheSeconds = 0
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	strs := map[string]*string{
		"APP_PORT":            &c.AppPort,
		"JWT_SECRET":          &c.JWTSecret,
		"SESSION_COOKIE_NAME": &c.SessionCookieName,
		"DB_DRIVER":           &c.DBDriver,
		"DATABASE_URI":        &c.DatabaseURI,
		"DB_HOST":             &c.DBHost,
		"DB_PORT":             &c.DBPort,
		"DB_USER":             &c.DBUser,
		"DB_PASSWORD":         &c.DBPassword,
		"DB_NAME":             &c.DBName,
		"GIN_MODE":            &c.GinMode,
		"GIN_PATH":            &c.GinPath,
		"CACHE_BACKEND":       &c.CacheBackend,
		"REDIS_HOST":          &c.RedisHost,
		"REDIS_PASSWORD":      &c.RedisPassword,
		"LOG_LEVEL":           &c.LogLevel,
		"LOG_PATH":            &c.LogPath,
	}
	for key, dst := range strs {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"RATE_LIMIT_PER_MINUTE": &c.RateLimitPerMinute,
		"SESSION_TTL_HOURS":     &c.SessionTTLHours,
		"INDEX_CACHE_SECONDS":   &c.IndexCacheSeconds,
		"GROUP_CACHE_SECONDS":   &c.GroupCacheSeconds,
		"REDIS_PORT":            &c.RedisPort,
		"REDIS_DB":              &c.RedisDB,
		"LOG_MAX_SIZE_MB":       &c.LogMaxSizeMB,
		"LOG_MAX_BACKUPS":       &c.LogMaxBackups,
		"LOG_MAX_AGE_DAYS":      &c.LogMaxAgeDays,
	}
	for key, dst := range ints {
		if v := getEnv(key, ""); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer value %s=%q: %w", key, v, err)
			}
			*dst = i
		}
	}

	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean value LOG_COMPRESS=%q: %w", v, err)
		}
		c.LogCompress = b
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("ADMIN_USERNAMES", ""); v != "" {
		c.AdminUsernames = splitAndTrim(v)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
