package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"
)

// Job is one document handed to a printer. Path is the rendered PDF; Raw
// holds the ESC/POS stream for thermal printers that cannot take a PDF.
type Job struct {
	Path  string
	Raw   []byte
	Title string
}

// ErrNoRawData is returned by raw printers given a job without ESC/POS bytes.
var ErrNoRawData = errors.New("printer: job has no raw data")

// Printer delivers a job to one output device.
type Printer interface {
	// Print blocks until the device accepted the job or ctx is done.
	Print(ctx context.Context, job Job) error
	// Kind names the channel: usb, network or spool.
	Kind() string
	// IsConnected returns true if the device looks reachable.
	IsConnected() bool
}

// runContext runs fn and gives up when ctx is done first. fn keeps running
// in the background in that case; device writes cannot be interrupted.
func runContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- USB Printer (writes to device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(ctx context.Context, job Job) error {
	if len(job.Raw) == 0 {
		return ErrNoRawData
	}
	return runContext(ctx, func() error {
		f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
		}
		defer f.Close()

		if _, err := f.Write(job.Raw); err != nil {
			return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
		}
		return nil
	})
}

func (p *usbPrinter) Kind() string { return "usb" }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (dials TCP, e.g. 192.168.1.100:9100) ---

type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter creates a printer that connects via TCP.
// Address should include port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address: address,
		timeout: 5 * time.Second,
	}
}

func (p *networkPrinter) Print(ctx context.Context, job Job) error {
	if len(job.Raw) == 0 {
		return ErrNoRawData
	}
	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(job.Raw); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Kind() string { return "network" }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Spool Printer (hands the PDF to the CUPS/lp spooler) ---

type spoolPrinter struct {
	queue   string
	command string
}

// NewSpoolPrinter creates a printer that submits the job's PDF to a
// spooler queue with `lp -d <queue>`.
func NewSpoolPrinter(queue string) Printer {
	return &spoolPrinter{queue: queue, command: "lp"}
}

func (p *spoolPrinter) Print(ctx context.Context, job Job) error {
	if job.Path == "" {
		return fmt.Errorf("printer: spool queue %s needs a file", p.queue)
	}
	args := []string{"-d", p.queue}
	if job.Title != "" {
		args = append(args, "-t", job.Title)
	}
	args = append(args, job.Path)

	out, err := exec.CommandContext(ctx, p.command, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("printer: %s -d %s: %w: %s", p.command, p.queue, err, out)
	}
	return nil
}

func (p *spoolPrinter) Kind() string { return "spool" }

func (p *spoolPrinter) IsConnected() bool {
	_, err := exec.LookPath(p.command)
	return err == nil
}

// NewPrinterFromConfig creates the appropriate Printer based on type.
//
//	printerType: "usb", "network", or "spool"
//	target: device path (e.g. "/dev/usb/lp0"), TCP address
//	(e.g. "192.168.1.100:9100") or spooler queue name
func NewPrinterFromConfig(printerType, target string) (Printer, error) {
	if target == "" {
		return nil, fmt.Errorf("printer: target is required for %s printer type", printerType)
	}
	switch printerType {
	case "usb":
		return NewUSBPrinter(target), nil
	case "network":
		return NewNetworkPrinter(target), nil
	case "spool":
		return NewSpoolPrinter(target), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or spool)", printerType)
	}
}
