package device

// PowerMeter reports consumption in kWh.
type PowerMeter struct{ sensor }

// NewPowerMeter creates an inactive meter reading 100–599 kWh.
func NewPowerMeter(id, name, location string, opts ...Option) *PowerMeter {
	m := &PowerMeter{}
	m.init(id, name, location, "kWh", func(src ValueSource) float64 {
		return float64(src.IntN(500) + 100)
	}, opts)
	return m
}

// Power modes.
const (
	PowerNormal    = "normal"
	PowerSaving    = "saving"
	PowerEmergency = "emergency"
)

// PowerController switches a grid segment between power modes.
type PowerController struct {
	controller
	mode string
}

// NewPowerController creates a controller in normal mode.
func NewPowerController(id, name, location string, opts ...Option) *PowerController {
	p := &PowerController{mode: PowerNormal}
	p.init(id, name, location, []string{PowerNormal, PowerSaving, PowerEmergency}, opts)
	return p
}

// Execute switches to the named mode.
func (p *PowerController) Execute(command string) error {
	mode, err := p.normalize(command)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
	return nil
}

// Mode returns the current power mode.
func (p *PowerController) Mode() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// PowerRegulator sets output level as a percentage. It starts at full output.
type PowerRegulator struct{ actuator }

// NewPowerRegulator creates a regulator at 100%.
func NewPowerRegulator(id, name, location string, opts ...Option) *PowerRegulator {
	r := &PowerRegulator{}
	r.init(id, name, location, 100, opts)
	return r
}
