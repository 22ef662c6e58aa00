package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Room      string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("TRUCO_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("TRUCO_TOKEN"),
		TokenFile: getEnvOrDefault("TRUCO_TOKEN_FILE", defaultTokenFile()),
		Room:      os.Getenv("TRUCO_ROOM"),
		Output:    "text",
	}
}

// LoadToken loads the token and room from file if not already set.
// The file holds the token on the first line and the room code on the second.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	c.Token = strings.TrimSpace(lines[0])
	if len(lines) == 2 && c.Room == "" {
		c.Room = strings.TrimSpace(lines[1])
	}
	return nil
}

// SaveToken saves the token and its room to the token file
func (c *Config) SaveToken(token, room string) error {
	c.Token = token
	c.Room = room

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token+"\n"+room+"\n"), 0600)
}

// ClearToken removes the token file
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trucoctl/token"
	}
	return filepath.Join(home, ".trucoctl", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
