// chzgen scans a Go package for types that can satisfy a polymorphic
// blueprint parameter and generates the registration file the subclass
// registry needs: Go cannot enumerate an interface's implementors at
// runtime, so the lattice is discovered statically here instead.
//
// Usage:
//
//	chzgen -base Model [-pkg ./internal/models] [-out chz_registry_gen.go]
//
// For each -base type B (an interface or struct declared in the scanned
// package), every exported struct type S in the package with S or *S
// assignable to B is emitted as a chz.RegisterSubclass call, so bindings
// like `model=Transformer` resolve without any hand-written registration.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

type options struct {
	pkgPattern string
	baseNames  []string
	outFile    string
	verbose    bool
}

func main() {
	var opts options
	var bases string
	flag.StringVar(&opts.pkgPattern, "pkg", ".", "package pattern to scan")
	flag.StringVar(&bases, "base", "", "comma-separated base type names declared in the scanned package")
	flag.StringVar(&opts.outFile, "out", "chz_registry_gen.go", "output file name, written into the scanned package directory")
	flag.BoolVar(&opts.verbose, "v", false, "log every discovered implementation to stderr")
	flag.Parse()

	if bases == "" {
		fmt.Fprintln(os.Stderr, "chzgen: -base is required")
		flag.Usage()
		os.Exit(2)
	}
	for _, b := range strings.Split(bases, ",") {
		if b = strings.TrimSpace(b); b != "" {
			opts.baseNames = append(opts.baseNames, b)
		}
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "chzgen: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedFiles,
		Env: append(os.Environ(), "GOWORK=off"),
	}
	pkgs, err := packages.Load(cfg, opts.pkgPattern)
	if err != nil {
		return fmt.Errorf("loading %s: %w", opts.pkgPattern, err)
	}
	if len(pkgs) != 1 {
		return fmt.Errorf("pattern %s matched %d packages, want exactly 1", opts.pkgPattern, len(pkgs))
	}
	pkg := pkgs[0]
	for _, e := range pkg.Errors {
		return fmt.Errorf("package %s: %s", pkg.PkgPath, e.Msg)
	}

	var groups []registrationGroup
	for _, baseName := range opts.baseNames {
		group, err := discoverImplementations(pkg, baseName)
		if err != nil {
			return err
		}
		if opts.verbose {
			for _, impl := range group.Impls {
				fmt.Fprintf(os.Stderr, "chzgen: %s <- %s\n", baseName, impl)
			}
		}
		groups = append(groups, group)
	}

	src, err := render(pkg.Name, groups)
	if err != nil {
		return err
	}

	dir := "."
	if len(pkg.GoFiles) > 0 {
		dir = filepath.Dir(pkg.GoFiles[0])
	}
	out := filepath.Join(dir, opts.outFile)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "chzgen: wrote %s\n", out)
	}
	return nil
}

type registrationGroup struct {
	// BaseName is the declared name of the base type.
	BaseName string
	// BaseExpr is the Go expression yielding the base reflect.Type.
	BaseExpr string
	// Impls are the names of struct types assignable to the base.
	Impls []string
}

// discoverImplementations finds every exported struct type in pkg whose
// value or pointer is assignable to the named base type.
func discoverImplementations(pkg *packages.Package, baseName string) (registrationGroup, error) {
	scope := pkg.Types.Scope()
	baseObj := scope.Lookup(baseName)
	if baseObj == nil {
		return registrationGroup{}, fmt.Errorf("type %s not found in package %s", baseName, pkg.PkgPath)
	}
	baseType, ok := baseObj.(*types.TypeName)
	if !ok {
		return registrationGroup{}, fmt.Errorf("%s is not a type in package %s", baseName, pkg.PkgPath)
	}
	base := baseType.Type()

	group := registrationGroup{BaseName: baseName}
	if types.IsInterface(base) {
		group.BaseExpr = fmt.Sprintf("reflect.TypeOf((*%s)(nil)).Elem()", baseName)
	} else {
		group.BaseExpr = fmt.Sprintf("reflect.TypeOf(%s{})", baseName)
	}

	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !obj.Exported() || obj.IsAlias() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			continue
		}
		if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
			continue
		}
		if types.AssignableTo(named, base) || types.AssignableTo(types.NewPointer(named), base) {
			group.Impls = append(group.Impls, name)
		}
	}
	sort.Strings(group.Impls)
	if len(group.Impls) == 0 {
		return group, fmt.Errorf("no exported struct type in %s is assignable to %s", pkg.PkgPath, baseName)
	}
	return group, nil
}

func render(pkgName string, groups []registrationGroup) ([]byte, error) {
	tmpl, err := template.New("registry").Parse(registryFileTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Package": pkgName,
		"Groups":  groups,
	}); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return src, nil
}

const registryFileTemplate = `// Code generated by chzgen. DO NOT EDIT.

package {{.Package}}

import (
	"reflect"

	"github.com/latticeforge/chz/pkg/chz"
)

func init() {
{{- range .Groups}}
{{- $base := .BaseExpr}}
{{- range .Impls}}
	chz.RegisterSubclass({{$base}}, {{printf "%q" .}}, reflect.TypeOf({{.}}{}))
{{- end}}
{{- end}}
}
`
