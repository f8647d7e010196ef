package main

import (
	"context"
	"log"

	"github.com/taigrr/ouroboros/pkg/config"
	"github.com/taigrr/ouroboros/pkg/creature"
)

// routeNavigator stands in for the site router. The controller already logs
// each navigation, so this only hands the route to notify.
func routeNavigator(notify func(route string)) creature.Navigator {
	return creature.NavigatorFunc(func(route string) {
		if notify != nil {
			notify(route)
		}
	})
}

// newScene builds a creature scene of the given framebuffer size from cfg.
func (g *globalFlags) newScene(ctx context.Context, cfg *config.Config, width, height int, nav creature.Navigator, logger *log.Logger) (*creature.Scene, error) {
	sc, err := cfg.SceneConfig(width, height)
	if err != nil {
		return nil, err
	}
	sc.AlbedoPath = g.texture
	sc.Navigator = nav
	return creature.Setup(ctx, sc, creature.WithLogger(logger))
}
