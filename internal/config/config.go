package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"catalog-matcher/internal/matching/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	CatalogFile     string // начальный снимок каталога; пусто - стартуем с пустым
	MatchConfigFile string // TOML с переопределениями MatchConfig

	RateLimitRPS   float64 // 0 - без ограничения
	RateLimitBurst int

	NATSURL          string // пусто - шина выключена
	CatalogSubject   string
	ExceptionSubject string

	BatchWorkers int
	StopWords    []string // пусто - встроенный набор
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	rps, _ := strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "0"), 64)
	burst, _ := strconv.Atoi(getenv("RATE_LIMIT_BURST", "20"))
	workers, _ := strconv.Atoi(getenv("BATCH_WORKERS", strconv.Itoa(runtime.NumCPU())))
	if workers <= 0 {
		workers = 1
	}
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:             getenv("HOST", "127.0.0.1"),
		Port:             port,
		AllowOrigins:     origins,
		LogLevel:         getenv("LOG_LEVEL", "info"),
		MaxUploadMB:      mb,
		LogFile:          getenv("LOG_FILE", "logs/catalog-matcher.log"),
		CatalogFile:      os.Getenv("CATALOG_FILE"),
		MatchConfigFile:  os.Getenv("MATCH_CONFIG_FILE"),
		RateLimitRPS:     rps,
		RateLimitBurst:   burst,
		NATSURL:          os.Getenv("NATS_URL"),
		CatalogSubject:   getenv("CATALOG_SUBJECT", "catalog.snapshot"),
		ExceptionSubject: getenv("EXCEPTION_SUBJECT", "catalog.mapping.exception"),
		BatchWorkers:     workers,
		StopWords:        splitCSV(os.Getenv("STOP_WORDS")),
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// LoadMatchConfig читает TOML с частичной настройкой сопоставления.
// Пустой путь - пустой патч (всё по умолчанию). Неизвестные ключи - ошибка, чтобы опечатки не терялись.
func LoadMatchConfig(path string) (model.ConfigPatch, error) {
	var p model.ConfigPatch
	if path == "" {
		return p, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("match config %s: %w", path, err)
	}
	return p, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
