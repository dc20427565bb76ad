package printer

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistry(t *testing.T) {
	r, err := ParseRegistry("counter=network:192.168.1.50:9100, usb=usb:/dev/usb/lp0,office=spool:HP_LaserJet", "office")
	require.NoError(t, err)

	assert.Equal(t, []string{"counter", "office", "usb"}, r.ListPrinters())
	name, ok := r.DefaultPrinter()
	assert.True(t, ok)
	assert.Equal(t, "office", name)

	p, ok := r.Get("counter")
	require.True(t, ok)
	assert.Equal(t, "network", p.Kind())
	assert.Equal(t, "192.168.1.50:9100", p.(*networkPrinter).address)

	p, ok = r.Get("office")
	require.True(t, ok)
	assert.Equal(t, "spool", p.Kind())
}

func TestParseRegistryErrors(t *testing.T) {
	for _, spec := range []string{
		"counter",
		"counter=network",
		"counter=fax:123",
		"a=usb:/dev/x,a=usb:/dev/y",
		"a=usb:",
	} {
		_, err := ParseRegistry(spec, "")
		assert.Error(t, err, spec)
	}

	_, err := ParseRegistry("a=usb:/dev/x", "missing")
	assert.Error(t, err)
}

func TestEmptyRegistry(t *testing.T) {
	r, err := ParseRegistry("", "")
	require.NoError(t, err)
	assert.Equal(t, []string{NoPrintersFound}, r.ListPrinters())
	_, ok := r.DefaultPrinter()
	assert.False(t, ok)
	assert.Error(t, r.Add(NoPrintersFound, NewUSBPrinter("/dev/null")))
}

func TestUSBPrinterWritesRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	p := NewUSBPrinter(path)
	assert.True(t, p.IsConnected())
	require.NoError(t, p.Print(context.Background(), Job{Raw: []byte("hello")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.ErrorIs(t, p.Print(context.Background(), Job{Path: "x.pdf"}), ErrNoRawData)
}

func TestNetworkPrinterSendsRaw(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(conn)
		received <- buf.Bytes()
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), Job{Raw: []byte{ESC, '@', 'h', 'i'}}))

	select {
	case data := <-received:
		assert.Equal(t, []byte{ESC, '@', 'h', 'i'}, data)
	case <-time.After(2 * time.Second):
		t.Fatal("printer never received data")
	}
}

func TestNetworkPrinterHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewNetworkPrinter("127.0.0.1:9").Print(ctx, Job{Raw: []byte("x")})
	assert.Error(t, err)
}

func TestSpoolPrinterNeedsFile(t *testing.T) {
	p := NewSpoolPrinter("office")
	assert.Error(t, p.Print(context.Background(), Job{Raw: []byte("x")}))
}

func TestSpoolPrinterMissingCommand(t *testing.T) {
	p := &spoolPrinter{queue: "office", command: "billdesk-no-such-lp"}
	assert.False(t, p.IsConnected())
	assert.Error(t, p.Print(context.Background(), Job{Path: "001.pdf"}))
}

func TestDocumentItemLineAndKeyValue(t *testing.T) {
	d := NewDocument(20)
	d.ItemLine("Kanchipuram silk saree", 3, "50.00", "150.00")
	d.KeyValue("Total", "289.10")

	out := string(d.Bytes()[2:]) // skip ESC @
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Kanchipuram silk sar", lines[0])
	assert.Equal(t, "ee", lines[1])
	assert.Equal(t, "  3 x 50.00   150.00", lines[2])
	assert.Equal(t, "Total         289.10", lines[3])
	assert.Equal(t, 20, d.Width())
}
