package ili9341

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/espward/ward/image565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// tx is one transfer as seen by the panel: command or data bytes.
type tx struct {
	data bool
	b    []byte
}

func (t tx) String() string {
	if t.data {
		return fmt.Sprintf("D% X", t.b)
	}
	return fmt.Sprintf("C% X", t.b)
}

func cmd(b ...byte) tx  { return tx{b: b} }
func data(b ...byte) tx { return tx{data: true, b: b} }

// fakeBus records every transfer together with the DC level.
type fakeBus struct {
	dc  *gpiotest.Pin
	txs []tx
	max int
	err error
}

func (f *fakeBus) String() string      { return "fake" }
func (f *fakeBus) Duplex() conn.Duplex { return conn.Half }
func (f *fakeBus) MaxTxSize() int      { return f.max }

func (f *fakeBus) Tx(w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	f.txs = append(f.txs, tx{data: f.dc.L == gpio.High, b: append([]byte(nil), w...)})
	return nil
}

func newTestDev(t *testing.T, opts *Opts) (*Dev, *fakeBus, *[]time.Duration) {
	t.Helper()
	f := &fakeBus{dc: &gpiotest.Pin{N: "DC"}}
	var slept []time.Duration
	d, err := newDev(f, f.dc, opts, func(d time.Duration) { slept = append(slept, d) })
	if err != nil {
		t.Fatal(err)
	}
	return d, f, &slept
}

func checkTxs(t *testing.T, got []tx, want ...tx) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("transfers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].data != want[i].data || !bytes.Equal(got[i].b, want[i].b) {
			t.Errorf("transfer %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
		want    image.Rectangle
	}{
		{"defaults", &Opts{}, false, image.Rect(0, 0, 320, 240)},
		{"small", &Opts{W: 4, H: 2}, false, image.Rect(0, 0, 4, 2)},
		{"rotated", &Opts{W: 320, H: 240, Rotated: true}, false, image.Rect(0, 0, 320, 240)},
		{"negative width", &Opts{W: -1, H: 2}, true, image.Rectangle{}},
		{"width > 320", &Opts{W: 321, H: 2}, true, image.Rectangle{}},
		{"height > 240", &Opts{W: 4, H: 241}, true, image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeBus{dc: &gpiotest.Pin{N: "DC"}}
			d, err := newDev(f, f.dc, tt.opts, func(time.Duration) {})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but didn't get one")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d.Bounds() != tt.want {
				t.Errorf("Bounds() = %v, want %v", d.Bounds(), tt.want)
			}
		})
	}
}

func TestNewSPINilDC(t *testing.T) {
	if _, err := NewSPI(nil, nil, nil); err == nil {
		t.Error("NewSPI should reject a nil DC pin")
	}
}

func TestInit(t *testing.T) {
	_, f, slept := newTestDev(t, &Opts{W: 4, H: 2})
	checkTxs(t, f.txs,
		cmd(0x01),
		cmd(0x11),
		cmd(0x3A), data(0x55),
		cmd(0x36), data(0x20),
		cmd(0x20),
		cmd(0x2A), data(0x00, 0x00, 0x00, 0x03),
		cmd(0x2B), data(0x00, 0x00, 0x00, 0x01),
		cmd(0x2C), data(make([]byte, 16)...),
		cmd(0x29),
	)
	want := []time.Duration{150 * time.Millisecond, 120 * time.Millisecond}
	if fmt.Sprint(*slept) != fmt.Sprint(want) {
		t.Errorf("slept %v, want %v", *slept, want)
	}
}

func TestInitReset(t *testing.T) {
	rst := &gpiotest.Pin{N: "RST", L: gpio.High}
	_, f, slept := newTestDev(t, &Opts{W: 4, H: 2, Rotated: true, BGR: true, RST: rst})
	if rst.L != gpio.High {
		t.Error("RST left low")
	}
	if len(*slept) != 4 || (*slept)[0] != 10*time.Millisecond {
		t.Errorf("slept %v", *slept)
	}
	// MY | MX | MV | BGR
	if got := f.txs[5]; !got.data || !bytes.Equal(got.b, []byte{0xE8}) {
		t.Errorf("memory access = %v, want DE8", got)
	}
}

func TestDevString(t *testing.T) {
	d, _, _ := newTestDev(t, nil)
	if got, want := d.String(), "ili9341.Dev{320x240}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if d.ColorModel() != image565.Model {
		t.Error("ColorModel() did not return image565.Model")
	}
}

func TestDrawDifferential(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 4, H: 2})
	red := image.NewUniform(color.RGBA{R: 0xFF, A: 0xFF})

	f.txs = nil
	if err := d.Draw(image.Rect(2, 1, 3, 2), red, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkTxs(t, f.txs,
		cmd(0x2A), data(0x00, 0x02, 0x00, 0x02),
		cmd(0x2B), data(0x00, 0x01, 0x00, 0x01),
		cmd(0x2C), data(0xF8, 0x00),
	)

	// Same content again: nothing to send.
	f.txs = nil
	if err := d.Draw(image.Rect(2, 1, 3, 2), red, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(f.txs) != 0 {
		t.Errorf("redraw sent %v", f.txs)
	}

	// Changes at opposite corners span the whole panel.
	f.txs = nil
	src := image.NewRGBA(d.Bounds())
	src.Set(0, 0, color.RGBA{B: 0xFF, A: 0xFF})
	src.Set(3, 1, color.RGBA{R: 0xFF, A: 0xFF})
	if err := d.Draw(image.Rect(0, 0, 4, 2), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(f.txs) != 6 {
		t.Fatalf("transfers = %v", f.txs)
	}
	checkTxs(t, f.txs[:4],
		cmd(0x2A), data(0x00, 0x00, 0x00, 0x03),
		cmd(0x2B), data(0x00, 0x00, 0x00, 0x01),
	)
}

func TestDrawRegion(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 4, H: 3})
	f.txs = nil
	blue := image.NewUniform(color.RGBA{B: 0xFF, A: 0xFF})
	if err := d.Draw(image.Rect(1, 1, 3, 3), blue, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkTxs(t, f.txs,
		cmd(0x2A), data(0x00, 0x01, 0x00, 0x02),
		cmd(0x2B), data(0x00, 0x01, 0x00, 0x02),
		cmd(0x2C), data(0x00, 0x1F, 0x00, 0x1F, 0x00, 0x1F, 0x00, 0x1F),
	)
}

func TestDrawClipped(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 4, H: 2})
	f.txs = nil
	if err := d.Draw(image.Rect(10, 10, 20, 20), image.White, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(f.txs) != 0 {
		t.Errorf("draw outside the panel sent %v", f.txs)
	}
}

func TestDrawFullFrame(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 2, H: 1})
	f.txs = nil
	src := image565.New(d.Bounds())
	src.SetRGB565(1, 0, 0xFFFF)
	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkTxs(t, f.txs,
		cmd(0x2A), data(0x00, 0x00, 0x00, 0x01),
		cmd(0x2B), data(0x00, 0x00, 0x00, 0x00),
		cmd(0x2C), data(0x00, 0x00, 0xFF, 0xFF),
	)
	if d.last.RGB565At(1, 0) != 0xFFFF || d.next.RGB565At(1, 0) != 0xFFFF {
		t.Error("frame buffers not updated")
	}
}

func TestDrawErrorRetries(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 4, H: 2})
	f.err = errors.New("spi: bus fault")
	if err := d.Draw(image.Rect(0, 0, 1, 1), image.White, image.Point{}); err == nil {
		t.Fatal("Draw should fail on a bus error")
	}

	// The pending pixel is sent with the next Draw.
	f.err = nil
	f.txs = nil
	if err := d.Draw(image.Rect(3, 1, 4, 2), image.White, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(f.txs) != 6 {
		t.Fatalf("transfers = %v", f.txs)
	}
	checkTxs(t, f.txs[:4],
		cmd(0x2A), data(0x00, 0x00, 0x00, 0x03),
		cmd(0x2B), data(0x00, 0x00, 0x00, 0x01),
	)
}

func TestSendDataChunks(t *testing.T) {
	f := &fakeBus{dc: &gpiotest.Pin{N: "DC"}, max: 6}
	if _, err := newDev(f, f.dc, &Opts{W: 4, H: 2}, func(time.Duration) {}); err != nil {
		t.Fatal(err)
	}
	// The 16 byte frame after RAMWR goes out as 6 + 6 + 4.
	i := 0
	for ; i < len(f.txs); i++ {
		if !f.txs[i].data && f.txs[i].b[0] == 0x2C {
			break
		}
	}
	checkTxs(t, f.txs[i+1:i+4],
		data(make([]byte, 6)...),
		data(make([]byte, 6)...),
		data(make([]byte, 4)...),
	)
}

func TestWrite(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 2, H: 1})
	if _, err := d.Write([]byte{1, 2, 3}); err == nil {
		t.Error("Write should reject a short buffer")
	}
	f.txs = nil
	n, err := d.Write([]byte{0x12, 0x34, 0x56, 0x78})
	if err != nil || n != 4 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := f.txs[len(f.txs)-1]; !bytes.Equal(got.b, []byte{0x12, 0x34, 0x56, 0x78}) {
		t.Errorf("last transfer = %v", got)
	}
	if d.last.RGB565At(1, 0) != 0x5678 {
		t.Error("Write did not update the frame")
	}
}

func TestInvert(t *testing.T) {
	d, f, _ := newTestDev(t, nil)
	f.txs = nil
	if err := d.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(false); err != nil {
		t.Fatal(err)
	}
	checkTxs(t, f.txs, cmd(0x21), cmd(0x20))
}

func TestScroll(t *testing.T) {
	d, f, _ := newTestDev(t, nil)
	f.txs = nil
	if err := d.Scroll(10, 20, 100); err != nil {
		t.Fatal(err)
	}
	if err := d.StopScroll(); err != nil {
		t.Fatal(err)
	}
	checkTxs(t, f.txs,
		cmd(0x33), data(0x00, 0x0A, 0x01, 0x22, 0x00, 0x14),
		cmd(0x37), data(0x00, 0x64),
		cmd(0x13),
	)

	for _, args := range [][3]int{{-1, 0, 0}, {0, 320, 0}, {10, 0, 5}, {0, 20, 300}} {
		if err := d.Scroll(args[0], args[1], args[2]); err == nil {
			t.Errorf("Scroll%v should fail", args)
		}
	}
}

func TestDevHalt(t *testing.T) {
	d, f, _ := newTestDev(t, &Opts{W: 4, H: 2})
	f.txs = nil
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	checkTxs(t, f.txs, cmd(0x28), cmd(0x10))
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if len(f.txs) != 2 {
		t.Error("second Halt talked to the panel")
	}

	if err := d.Draw(d.Bounds(), image.White, image.Point{}); err == nil {
		t.Error("Draw should fail when halted")
	}
	if _, err := d.Write(make([]byte, 16)); err == nil {
		t.Error("Write should fail when halted")
	}
	if err := d.Invert(true); err == nil {
		t.Error("Invert should fail when halted")
	}
	if err := d.Scroll(0, 0, 0); err == nil {
		t.Error("Scroll should fail when halted")
	}
	if err := d.StopScroll(); err == nil {
		t.Error("StopScroll should fail when halted")
	}
}
