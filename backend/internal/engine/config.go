package engine

import (
	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/layout"
	"network-journal/backend/internal/scene"
	"network-journal/backend/pkg/config"
)

// Config is the initial state of an engine
type Config struct {
	Width      int
	Height     int
	Layout     string
	Options    scene.Options
	Visibility scene.Visibility
	Owner      scene.Owner
	Hooks      Hooks
}

// DefaultConfig returns a config with the default viewport and options
func DefaultConfig() Config {
	return Config{
		Width:   constants.DefaultViewportWidth,
		Height:  constants.DefaultViewportHeight,
		Layout:  string(layout.KindForce),
		Options: scene.DefaultOptions(),
		Owner:   scene.Owner{Name: constants.DefaultOwnerName},
	}
}

// ConfigFrom maps application configuration onto an engine config
func ConfigFrom(cfg *config.Config) (Config, error) {
	out := DefaultConfig()
	out.Width = cfg.ViewportWidth
	out.Height = cfg.ViewportHeight
	out.Layout = cfg.DefaultLayout
	out.Owner = scene.Owner{ID: cfg.OwnerID, Name: cfg.OwnerName}
	out.Visibility = scene.Hide(cfg.HiddenNodeTypes...)

	opts := scene.DefaultOptions()
	opts.ShowLabels = cfg.ShowLabels
	opts.ShowGlow = cfg.ShowGlow
	opts.LinkOpacity = cfg.LinkOpacity

	var err error
	if opts.NodeSize, err = scene.ParseNodeSize(cfg.NodeSize); err != nil {
		return out, err
	}
	if opts.AnimationSpeed, err = scene.ParseAnimationSpeed(cfg.AnimationSpeed); err != nil {
		return out, err
	}
	if opts.Gravity, err = scene.ParseGravity(cfg.GravityStrength); err != nil {
		return out, err
	}
	if opts.Spring, err = scene.ParseSpring(cfg.SpringStrength); err != nil {
		return out, err
	}
	if err := opts.Validate(); err != nil {
		return out, err
	}
	out.Options = opts
	return out, nil
}
