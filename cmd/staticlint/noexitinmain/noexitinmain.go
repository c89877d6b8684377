// Package noexitinmain reports calls that end the process from main.main.
package noexitinmain

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer reports os.Exit, log.Fatal* and the Fatal methods of zap loggers
// called directly in main.main. They skip deferred calls, so App.Close never
// flushes the logger or the storage.
var Analyzer = &analysis.Analyzer{
	Name: "noexitinmain",
	Doc:  "prohibits calls that exit the process directly in main.main",
	Run:  run,
}

var exitingFuncs = map[string]bool{
	"os.Exit":     true,
	"log.Fatal":   true,
	"log.Fatalf":  true,
	"log.Fatalln": true,

	"(*go.uber.org/zap.Logger).Fatal":          true,
	"(*go.uber.org/zap.SugaredLogger).Fatal":   true,
	"(*go.uber.org/zap.SugaredLogger).Fatalf":  true,
	"(*go.uber.org/zap.SugaredLogger).Fatalw":  true,
	"(*go.uber.org/zap.SugaredLogger).Fatalln": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		// go test builds a generated main package in the build cache.
		if isGoBuildCacheFile(pass.Fset.File(file.Pos()).Name()) {
			continue
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
				continue
			}

			ast.Inspect(fn.Body, func(n ast.Node) bool {
				// Closures may run after main returned, e.g. in a goroutine.
				if _, ok := n.(*ast.FuncLit); ok {
					return false
				}

				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}

				callee, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
				if ok && exitingFuncs[callee.FullName()] {
					pass.Reportf(call.Pos(), "%s in main.main skips deferred calls", callee.Name())
				}

				return true
			})
		}
	}

	return nil, nil
}

func isGoBuildCacheFile(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/go-build/")
}
