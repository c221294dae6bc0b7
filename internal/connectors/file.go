package connectors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fcff-tools/ginzu/internal/config"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileConnector serves fundamentals from a directory of YAML files, one file
// per ticker (<dir>/<TICKER>.yaml). It is the local-data counterpart to a
// market-data API connector and the backing store for the server's
// by-ticker endpoint.
type FileConnector struct {
	dir    string
	logger *zap.Logger
}

// NewFileConnector returns a connector reading from dir.
func NewFileConnector(dir string, logger *zap.Logger) *FileConnector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileConnector{dir: dir, logger: logger}
}

// Name implements Connector.
func (c *FileConnector) Name() string { return "file" }

// Fetch implements Connector. Ticker lookup is case-insensitive; the record
// ticker is set from the request when the file omits it.
func (c *FileConnector) Fetch(ticker string) (*config.Company, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker must not be empty")
	}

	path := filepath.Join(c.dir, ticker+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Some data dumps use the short extension.
		data, err = os.ReadFile(filepath.Join(c.dir, ticker+".yml"))
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Ticker: ticker, Connector: c.Name()}
	}
	if err != nil {
		return nil, fmt.Errorf("reading fundamentals for %s: %w", ticker, err)
	}

	var company config.Company
	if err := yaml.Unmarshal(data, &company); err != nil {
		return nil, fmt.Errorf("parsing fundamentals for %s: %w", ticker, err)
	}
	if company.Ticker == "" {
		company.Ticker = ticker
	}

	c.logger.Debug("loaded fundamentals",
		zap.String("op", "connectors.FileConnector.Fetch"),
		zap.String("ticker", ticker),
		zap.String("path", path),
	)
	return &company, nil
}
