package params

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type HTTP struct {
	Addr string
}

type Storage struct {
	JournalDir string
}

type Config struct {
	HTTP    HTTP
	Storage Storage
	LogFile string
	// Markets to list at startup, as SYMBOL:BASE:QUOTE triples.
	Markets []string
}

func Default() Config {
	return Config{
		HTTP:    HTTP{Addr: ":8080"},
		Storage: Storage{JournalDir: "data/journal"},
		LogFile: "data/matchd.log",
		Markets: []string{"BTC-USDT:BTC:USDT"},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if dir := os.Getenv("JOURNAL_DIR"); dir != "" {
		cfg.Storage.JournalDir = dir
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}

	// Example: "BTC-USDT:BTC:USDT,ETH-USDT:ETH:USDT"
	if markets := os.Getenv("MARKETS"); markets != "" {
		cfg.Markets = strings.Split(markets, ",")
	}

	return cfg
}
