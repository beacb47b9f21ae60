// Package ward holds the shared types of a small set of drivers for hobby
// peripherals wired to a single board computer through periph.io.
//
// The drivers live in sub-packages:
//
// - button: debounced push buttons
// - pir: passive infrared motion sensors
// - joystick: two axis analog joysticks with a select button
// - bitmap: the 1-bit image format of 8x8 LED panels
// - max7219: the MAX7219 LED controller, daisy chained over SPI
// - matrix: a chain of 8x8 panels exposed as one flat pixel grid
// - segment: five labelled text areas on any periph.io display.Drawer
// - image565: the 16-bit RGB image format of TFT panels
// - ili9341: the ILI9341 TFT controller over SPI, as a display.Drawer
// - sensor: one method interfaces for temperature, humidity, pressure,
// distance, CO2, VOC and light readings
// - aht20, bme280, sgp30, tsl2591: I2C environment sensors
// - ultrasonic: HC-SR04 style echo rangers on two GPIOs
//
// This package defines the Display contract shared by matrix.Display and
// segment.Screen, and HardwareError, returned for every failed bus or pin
// operation.
//
// # Hardware Connection
//
// A MAX7219 chain is driven from one SPI port. Panel 0 is the one wired to
// the host; every further panel hangs off the DOUT pin of the previous one:
//
//	MAX7219 Pin → System Pin
//	GND         → GND
//	VCC         → 5V
//	DIN         → SPI Data (MOSI)
//	CLK         → SPI Clock (SCLK)
//	CS          → SPI Chip Select
//
// Buttons connect a GPIO to GND and rely on the internal pull-up, so a
// pressed button reads Low. PIR sensors drive their output pin High while
// they see motion.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/espward/ward/button"
//		"github.com/espward/ward/matrix"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//		p, err := spireg.Open("")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer p.Close()
//
//		d, err := matrix.NewSPI(p, 4, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer d.Halt()
//
//		b, err := button.New(gpioreg.ByName("GPIO17"), nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		for x := 0; x < 32; {
//			if b.Poll() == button.Pressed {
//				if err := d.SetPixel(x, 3); err != nil {
//					log.Fatal(err)
//				}
//				x++
//			}
//		}
//	}
//
// # Errors
//
// Addressing a pixel outside a matrix display, or building one with no
// panels, is a programming error and panics. Failures of the underlying
// SPI port or GPIO pin of the matrix, button, pir, joystick and ultrasonic
// drivers are returned wrapped in *HardwareError, which matches ErrHardware:
//
//	if errors.Is(err, ward.ErrHardware) {
//		// retry, or give up on the device
//	}
//
// The I2C sensor drivers and ili9341 follow periph.io and prefix bus errors
// with the package name instead.
//
// # Concurrency
//
// None of the drivers are safe for concurrent use. Each device is meant to
// be owned by one control loop.
package ward
