// Package epd75 controls a Waveshare 7.5" e-paper panel (UC8179
// controller, 800×480) via SPI.
//
// The panel accepts the packed frame layouts produced by the epdpage
// pipeline: bilevel frames at 8 pixels per byte (image1bit layout) and
// 4-tone frames at 4 pixels per byte in display polarity (image2bit
// layout, split into the controller's two bit planes by this driver).
package epd75

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/epdpage/image1bit"
	"github.com/flavioheleno/epdpage/image2bit"
)

// UC8179 command bytes.
const (
	cmdPanelSetting      = 0x00
	cmdPowerSetting      = 0x01
	cmdPowerOff          = 0x02
	cmdPowerOn           = 0x04
	cmdBoosterSoftStart  = 0x06
	cmdDeepSleep         = 0x07
	cmdDataStartTx1      = 0x10 // first bit plane (old data in partial mode)
	cmdDisplayRefresh    = 0x12
	cmdDataStartTx2      = 0x13 // second bit plane (new data)
	cmdDualSPI           = 0x15
	cmdVcomDataInterval  = 0x50
	cmdTconSetting       = 0x60
	cmdResolutionSetting = 0x61
)

// ErrBusyTimeout is returned when the panel does not release the BUSY
// line within the refresh deadline.
var ErrBusyTimeout = errors.New("epd75: busy timeout")

// Opts is the configuration for the panel.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 800, must be a multiple of 8 and ≤800)
	H int // Height (default: 480, must be ≤480)

	// Required handshake pins
	BUSY gpio.PinIO // Busy pin (low while the controller is working)

	// Optional hardware reset pin
	RST gpio.PinIO // Reset pin (optional, nil if not used)
}

// Dev is the device handle for the panel.
type Dev struct {
	// Communication
	c    conn.Conn   // SPI connection
	dc   gpio.PinOut // Data/Command pin
	busy gpio.PinIO  // Busy pin
	rst  gpio.PinIO  // Reset pin (optional)

	// Display geometry
	rect image.Rectangle

	// State
	halted bool
}

// NewSPI creates a new panel device connected via SPI.
//
// The SPI port is configured for 4MHz, Mode0, 8-bit transfers. The dc
// (Data/Command) pin and the opts.BUSY pin are required; opts.RST is
// optional.
//
// opts can be nil only for the dimensions; BUSY must always be set, so a
// nil opts is rejected.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil || opts.BUSY == nil {
		return nil, errors.New("epd75: BUSY pin is required")
	}

	w, h := opts.W, opts.H
	if w == 0 {
		w = 800
	}
	if h == 0 {
		h = 480
	}
	if w <= 0 || w%8 != 0 || w > 800 {
		return nil, errors.New("epd75: width must be a multiple of 8 and between 8 and 800")
	}
	if h <= 0 || h > 480 {
		return nil, errors.New("epd75: height must be between 1 and 480")
	}

	c, err := p.Connect(4*1000*1000, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	d := &Dev{
		c:    c,
		dc:   dc,
		busy: opts.BUSY,
		rst:  opts.RST,
		rect: image.Rect(0, 0, w, h),
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init resets the controller and sends the initialization sequence.
func (d *Dev) init() error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("epd75: failed to pull RST high: %w", err)
		}
		time.Sleep(20 * time.Millisecond)
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("epd75: failed to pull RST low: %w", err)
		}
		time.Sleep(2 * time.Millisecond)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("epd75: failed to pull RST high: %w", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	// VGH/VGL 20V, VDH/VDL 15V, default booster strength.
	if err := d.sendCommand(cmdPowerSetting, 0x07, 0x07, 0x3F, 0x3F); err != nil {
		return err
	}
	if err := d.sendCommand(cmdBoosterSoftStart, 0x17, 0x17, 0x27, 0x17); err != nil {
		return err
	}
	if err := d.sendCommand(cmdPowerOn); err != nil {
		return err
	}
	if err := d.waitUntilIdle(5 * time.Second); err != nil {
		return err
	}

	// KW mode, LUT from OTP, scan up, shift right, booster on.
	if err := d.sendCommand(cmdPanelSetting, 0x1F); err != nil {
		return err
	}
	w, h := d.rect.Dx(), d.rect.Dy()
	if err := d.sendCommand(cmdResolutionSetting,
		byte(w>>8), byte(w), byte(h>>8), byte(h)); err != nil {
		return err
	}
	if err := d.sendCommand(cmdDualSPI, 0x00); err != nil {
		return err
	}
	if err := d.sendCommand(cmdVcomDataInterval, 0x10, 0x07); err != nil {
		return err
	}
	return d.sendCommand(cmdTconSetting, 0x22)
}

// sendCommand sends a command byte followed by its data bytes.
func (d *Dev) sendCommand(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.sendData(data)
}

// sendData sends a slice of data bytes.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	// The SPI driver may cap transfer sizes; chunk conservatively.
	const chunk = 4096
	for len(data) > 0 {
		n := len(data)
		if n > chunk {
			n = chunk
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// waitUntilIdle blocks until the controller releases the BUSY line.
// BUSY is active low on the UC8179.
func (d *Dev) waitUntilIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for d.busy.Read() == gpio.Low {
		if time.Now().After(deadline) {
			return ErrBusyTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write sends a packed bilevel frame and refreshes the panel. The data
// must be exactly W*H/8 bytes in the image1bit layout (8 pixels per
// byte, MSB first, set bit = white).
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("epd75: halted")
	}
	frame := d.rect.Dx() * d.rect.Dy() / 8
	if len(pixels) != frame {
		return 0, errors.New("epd75: invalid buffer size")
	}

	// Plane 1 all white, plane 2 carries the frame.
	blank := make([]byte, frame)
	for i := range blank {
		blank[i] = 0xFF
	}
	if err := d.sendCommand(cmdDataStartTx1, blank...); err != nil {
		return 0, err
	}
	if err := d.sendCommand(cmdDataStartTx2, pixels...); err != nil {
		return 0, err
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Write4Gray sends a packed 4-tone frame and refreshes the panel. The
// data must be exactly W*H/4 bytes in the image2bit layout (4 pixels per
// byte, MSB first, display polarity). The driver splits each crumb into
// the controller's two bit planes.
func (d *Dev) Write4Gray(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("epd75: halted")
	}
	w, h := d.rect.Dx(), d.rect.Dy()
	if len(pixels) != w*h/4 {
		return 0, errors.New("epd75: invalid buffer size")
	}

	plane1, plane2 := splitPlanes(pixels)
	if err := d.sendCommand(cmdDataStartTx1, plane1...); err != nil {
		return 0, err
	}
	if err := d.sendCommand(cmdDataStartTx2, plane2...); err != nil {
		return 0, err
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// splitPlanes converts a packed 2-bit frame into two 1-bit planes. The
// high bit of each crumb goes to plane 1, the low bit to plane 2.
func splitPlanes(pixels []byte) (plane1, plane2 []byte) {
	plane1 = make([]byte, len(pixels)/2)
	plane2 = make([]byte, len(pixels)/2)
	for i, b := range pixels {
		for j := 0; j < 4; j++ {
			crumb := (b >> uint(6-2*j)) & 0x03
			bit := uint(7 - (i*4+j)%8)
			idx := (i*4 + j) / 8
			plane1[idx] |= (crumb >> 1) << bit
			plane2[idx] |= (crumb & 0x01) << bit
		}
	}
	return plane1, plane2
}

// refresh triggers a full panel update and waits for completion. A full
// refresh on this panel takes several seconds.
func (d *Dev) refresh() error {
	if err := d.sendCommand(cmdDisplayRefresh); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return d.waitUntilIdle(30 * time.Second)
}

// Draw draws an image onto the display. If src is a full-frame
// *image1bit.HorizontalMSB its packed bytes are sent directly; any other
// image is converted through the bilevel color model first.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("epd75: halted")
	}

	zeroPoint := image.Point{}
	if srcImg, ok := src.(*image1bit.HorizontalMSB); ok {
		if dst == d.rect && sp == zeroPoint && srcImg.Rect == d.rect {
			_, err := d.Write(srcImg.Pix)
			return err
		}
	}
	if srcImg, ok := src.(*image2bit.HorizontalCrumb); ok {
		if dst == d.rect && sp == zeroPoint && srcImg.Rect == d.rect {
			_, err := d.Write4Gray(srcImg.Pix)
			return err
		}
	}

	next := image1bit.NewHorizontalMSB(d.rect)
	draw.Draw(next, dst.Intersect(d.rect), src, sp, draw.Src)
	_, err := d.Write(next.Pix)
	return err
}

// Clear blanks the panel to white.
func (d *Dev) Clear() error {
	if d.halted {
		return errors.New("epd75: halted")
	}
	white := make([]byte, d.rect.Dx()*d.rect.Dy()/8)
	for i := range white {
		white[i] = 0xFF
	}
	_, err := d.Write(white)
	return err
}

// Sleep puts the controller into deep sleep. A hardware reset (RST pin)
// is needed to wake it again.
func (d *Dev) Sleep() error {
	if d.halted {
		return errors.New("epd75: halted")
	}
	if err := d.sendCommand(cmdPowerOff); err != nil {
		return err
	}
	if err := d.waitUntilIdle(5 * time.Second); err != nil {
		return err
	}
	return d.sendCommand(cmdDeepSleep, 0xA5)
}

// Halt powers off the panel. After calling Halt, the device will not
// respond to further commands until re-initialized.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	err := d.sendCommand(cmdPowerOff)
	d.halted = true
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("epd75.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
