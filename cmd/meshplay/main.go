// Command meshplay opens a window and renders one mesh once: a generated sphere or an OBJ model.
//
// Usage:
//
//	meshplay [-config playground.yaml] [-sphere | -model path/to/mesh.obj] [-wireframe] [-profile]
package main

import (
	"flag"
	"log"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/playground"
)

func main() {
	configPath := flag.String("config", "", "YAML config file, defaults are used when empty")
	modelPath := flag.String("model", "", "render this OBJ model, one draw per submesh")
	sphere := flag.Bool("sphere", false, "render the generated sphere")
	wireframe := flag.Bool("wireframe", false, "draw triangle edges as lines")
	profile := flag.Bool("profile", false, "log setup stage timings")
	flag.Parse()

	if *sphere && *modelPath != "" {
		log.Fatalf("meshplay: -sphere and -model are mutually exclusive")
	}

	cfg := playground.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = playground.LoadConfig(*configPath); err != nil {
			log.Fatalf("meshplay: %v", err)
		}
	}

	switch {
	case *modelPath != "":
		cfg.Mesh.Kind = playground.MeshKindModel
		cfg.Mesh.Path = *modelPath
		cfg.Draw.PerSubmesh = true
	case *sphere:
		cfg.Mesh.Kind = playground.MeshKindSphere
	}
	if *wireframe {
		cfg.Mesh.Geometry = mesh.GeometryLines.String()
	}
	if *profile {
		cfg.Profile = true
	}

	pg, err := playground.New(cfg)
	if err != nil {
		log.Fatalf("meshplay: %v", err)
	}
	defer pg.Close()

	if err := pg.Run(); err != nil {
		pg.Close()
		log.Fatalf("meshplay: %v", err)
	}
}
