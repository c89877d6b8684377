// Command staticlint runs the analyzers the project code is held to: a set of
// standard go/analysis passes, ineffassign, nilerr, the staticcheck checks
// listed in config.json and noexitinmain.
//
// config.json is embedded into the binary. A config.json placed next to the
// executable replaces it.
//
//	go build -o staticlint ./cmd/staticlint
//	./staticlint ./...
package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/atomicnotes/cmd/staticlint/noexitinmain"
)

// ConfigFileName is looked up next to the executable.
const ConfigFileName = `config.json`

//go:embed config.json
var defaultConfig []byte

// ConfigData lists the enabled staticcheck analyzers, e.g. "SA1000", "SA4010".
type ConfigData struct {
	Staticcheck []string `json:"staticcheck"`
}

func loadConfig() (ConfigData, error) {
	data := defaultConfig

	appfile, err := os.Executable()
	if err != nil {
		return ConfigData{}, err
	}
	override, err := os.ReadFile(filepath.Join(filepath.Dir(appfile), ConfigFileName))
	switch {
	case err == nil:
		data = override
	case !errors.Is(err, os.ErrNotExist):
		return ConfigData{}, err
	}

	var cfg ConfigData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ConfigData{}, err
	}

	return cfg, nil
}

func analyzers(cfg ConfigData) []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noexitinmain.Analyzer,
	}

	enabled := make(map[string]bool, len(cfg.Staticcheck))
	for _, name := range cfg.Staticcheck {
		enabled[name] = true
	}

	for _, v := range staticcheck.Analyzers {
		if enabled[v.Analyzer.Name] {
			checks = append(checks, v.Analyzer)
		}
	}

	return checks
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	multichecker.Main(analyzers(cfg)...)
}
