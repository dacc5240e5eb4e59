// chzdemo is a worked example of driving a Blueprint from the command
// line: a small training-run configuration with a polymorphic model field,
// an optional YAML layer of defaults, and the full key=value / key@=path /
// --help token grammar.
//
//	chzdemo name=baseline model=Transformer model.n_layers=16
//	chzdemo --config=run.yaml 'name=sweep' '...lr=0.01'
//	chzdemo --help
package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/latticeforge/chz/internal/chzconfig"
	"github.com/latticeforge/chz/pkg/chz"
)

// Model is the polymorphic slot: any registered implementation can be
// selected by name on the command line.
type Model interface {
	ParamCount() int
}

type Transformer struct {
	NLayers int `chz:"n_layers" chzdefault:"12" chzdoc:"transformer depth"`
	DModel  int `chz:"d_model" chzdefault:"768" chzdoc:"embedding width"`
}

func (t Transformer) ParamCount() int { return t.NLayers * t.DModel * t.DModel * 12 }

type MLP struct {
	Hidden int `chz:"hidden" chzdefault:"256"`
	Depth  int `chz:"depth" chzdefault:"3"`
}

func (m MLP) ParamCount() int { return m.Depth * m.Hidden * m.Hidden }

type Optimizer struct {
	LR       float64 `chz:"lr" chzdefault:"0.001" chzdoc:"learning rate"`
	Momentum float64 `chz:"momentum" chzdefault:"0.9"`
}

type TrainConfig struct {
	Name      string    `chz:"name" chzdoc:"run name"`
	Seed      int       `chz:"seed" chzdefault:"0"`
	Model     Model     `chz:"model" chzdoc:"model architecture"`
	Optimizer Optimizer `chz:"optimizer"`
}

func init() {
	// cmd/chzgen generates registrations like these from a package scan;
	// for a single-file demo, writing them out is shorter.
	base := chz.TypeOf[Model]()
	chz.RegisterSubclass(base, "Transformer", reflect.TypeOf(Transformer{}))
	chz.RegisterSubclass(base, "MLP", reflect.TypeOf(MLP{}))
}

func main() {
	blueprint := chz.New(chz.Struct[TrainConfig]())

	var argv []string
	allowHyphens := false
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "--debug":
			chzconfig.IsDebug = true
		case arg == "--allow-hyphens":
			allowHyphens = true
		case strings.HasPrefix(arg, "--config="):
			layer, err := chzconfig.LoadLayersFromYAML(strings.TrimPrefix(arg, "--config="))
			if err != nil {
				fmt.Fprintf(os.Stderr, "chzdemo: %v\n", err)
				os.Exit(1)
			}
			blueprint, err = blueprint.Apply(layer)
			if err != nil {
				fmt.Fprintf(os.Stderr, "chzdemo: %v\n", err)
				os.Exit(1)
			}
		default:
			argv = append(argv, arg)
		}
	}

	cfg, err := blueprint.MakeFromArgv(argv, allowHyphens)
	if err != nil {
		var help *chz.EntrypointHelpException
		if errors.As(err, &help) {
			fmt.Print(help.HelpText)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "chzdemo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("run %q (seed %d)\n", cfg.Name, cfg.Seed)
	if cfg.Model != nil {
		fmt.Printf("model: %T with %d parameters\n", cfg.Model, cfg.Model.ParamCount())
	}
	fmt.Printf("optimizer: lr=%g momentum=%g\n", cfg.Optimizer.LR, cfg.Optimizer.Momentum)
}
