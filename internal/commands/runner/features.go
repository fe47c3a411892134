package runnercmd

// FeatureGates exposes runtime feature toggles required by migration command
// handlers. Callers should supply closures that read runtime configuration so
// handlers stay decoupled from the config tree while honouring flags.
type FeatureGates struct {
	// MigrationEnabled gates every migration command.
	MigrationEnabled func() bool
	// PublishEnabled gates commands that request publishing to the destination CMS.
	PublishEnabled func() bool
}

func (g FeatureGates) migrationEnabled() bool {
	if g.MigrationEnabled == nil {
		return true
	}
	return g.MigrationEnabled()
}

func (g FeatureGates) publishEnabled() bool {
	if g.PublishEnabled == nil {
		return true
	}
	return g.PublishEnabled()
}
