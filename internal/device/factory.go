package device

import "fmt"

// Category names accepted by FactoryFor. They match subsystem categories.
const (
	CategoryTransport = "transport"
	CategoryLighting  = "lighting"
	CategorySecurity  = "security"
	CategoryEnergy    = "energy"
)

// Constructor builds a device of type T.
type Constructor[T Device] func(id, name, location string, opts ...Option) T

// Factory creates the sensor, controller and actuator of one municipal
// domain. Its methods return the concrete device types, so no type
// assertions are needed downstream.
type Factory[S Sensor, C Controller, A Actuator] struct {
	category   string
	sensor     Constructor[S]
	controller Constructor[C]
	actuator   Constructor[A]
	opts       []Option
}

// NewFactory assembles a factory from three constructors. opts are applied
// to every device the factory creates.
func NewFactory[S Sensor, C Controller, A Actuator](
	category string,
	sensor func(id, name, location string, opts ...Option) S,
	controller func(id, name, location string, opts ...Option) C,
	actuator func(id, name, location string, opts ...Option) A,
	opts ...Option,
) *Factory[S, C, A] {
	return &Factory[S, C, A]{
		category:   category,
		sensor:     sensor,
		controller: controller,
		actuator:   actuator,
		opts:       opts,
	}
}

// Category returns the domain the factory serves.
func (f *Factory[S, C, A]) Category() string { return f.category }

// NewSensor creates the domain's sensor.
func (f *Factory[S, C, A]) NewSensor(id, name, location string) S {
	return f.sensor(id, name, location, f.opts...)
}

// NewController creates the domain's controller.
func (f *Factory[S, C, A]) NewController(id, name, location string) C {
	return f.controller(id, name, location, f.opts...)
}

// NewActuator creates the domain's actuator.
func (f *Factory[S, C, A]) NewActuator(id, name, location string) A {
	return f.actuator(id, name, location, f.opts...)
}

// Sensor implements AnyFactory.
func (f *Factory[S, C, A]) Sensor(id, name, location string) Sensor {
	return f.NewSensor(id, name, location)
}

// Controller implements AnyFactory.
func (f *Factory[S, C, A]) Controller(id, name, location string) Controller {
	return f.NewController(id, name, location)
}

// Actuator implements AnyFactory.
func (f *Factory[S, C, A]) Actuator(id, name, location string) Actuator {
	return f.NewActuator(id, name, location)
}

// AnyFactory is the category-erased view of a Factory, used when the
// domain is only known at runtime.
type AnyFactory interface {
	Category() string
	Sensor(id, name, location string) Sensor
	Controller(id, name, location string) Controller
	Actuator(id, name, location string) Actuator
}

// TransportFactory creates traffic sensors, lights and barriers.
func TransportFactory(opts ...Option) *Factory[*TrafficSensor, *TrafficLight, *TrafficBarrier] {
	return NewFactory(CategoryTransport, NewTrafficSensor, NewTrafficLight, NewTrafficBarrier, opts...)
}

// LightingFactory creates light sensors, switches and dimmers.
func LightingFactory(opts ...Option) *Factory[*LightSensor, *LightSwitch, *Dimmer] {
	return NewFactory(CategoryLighting, NewLightSensor, NewLightSwitch, NewDimmer, opts...)
}

// SecurityFactory creates cameras, alarms and gates.
func SecurityFactory(opts ...Option) *Factory[*Camera, *Alarm, *Gate] {
	return NewFactory(CategorySecurity, NewCamera, NewAlarm, NewGate, opts...)
}

// EnergyFactory creates power meters, controllers and regulators.
func EnergyFactory(opts ...Option) *Factory[*PowerMeter, *PowerController, *PowerRegulator] {
	return NewFactory(CategoryEnergy, NewPowerMeter, NewPowerController, NewPowerRegulator, opts...)
}

// FactoryFor returns the factory for a category name.
// Returns ErrUnknownCategory for anything else.
func FactoryFor(category string, opts ...Option) (AnyFactory, error) {
	switch category {
	case CategoryTransport:
		return TransportFactory(opts...), nil
	case CategoryLighting:
		return LightingFactory(opts...), nil
	case CategorySecurity:
		return SecurityFactory(opts...), nil
	case CategoryEnergy:
		return EnergyFactory(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}
