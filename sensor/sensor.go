// Package sensor defines what the environment sensors of this module can
// measure.
//
// Every driver satisfies the interfaces matching its capabilities, so a
// control loop can take a TemperatureSensor without caring whether it is an
// AHT20 or a BME280:
//
//	func logTemperature(s sensor.TemperatureSensor) {
//		t, err := s.Temperature()
//		if err != nil {
//			log.Printf("read failed: %v", err)
//			return
//		}
//		log.Printf("%s", t)
//	}
//
// Quantities use the periph.io/x/conn/v3/physic units where one exists.
package sensor

import "periph.io/x/conn/v3/physic"

// TemperatureSensor measures the ambient temperature.
type TemperatureSensor interface {
	Temperature() (physic.Temperature, error)
}

// HumiditySensor measures the relative humidity.
type HumiditySensor interface {
	Humidity() (physic.RelativeHumidity, error)
}

// PressureSensor measures the atmospheric pressure.
type PressureSensor interface {
	Pressure() (physic.Pressure, error)
}

// DistanceSensor measures the distance to the nearest object.
type DistanceSensor interface {
	Distance() (physic.Distance, error)
}

// CO2Sensor measures the CO2, or CO2 equivalent, concentration in ppm.
type CO2Sensor interface {
	CO2() (uint16, error)
}

// VOCSensor measures the total volatile organic compounds in ppb.
type VOCSensor interface {
	VOC() (uint16, error)
}

// LumiSensor measures the illuminance in lux.
type LumiSensor interface {
	Lux() (float64, error)
}
