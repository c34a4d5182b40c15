package moth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildsense/mothctl/internal/hid"
)

// mothSim models the device firmware's configuration state machine: a
// volatile temporary record and a durable persisted one.
type mothSim struct {
	temporary Config
	persisted Config
	received  map[byte]int
}

func newMothSim(initial Config) *mothSim {
	return &mothSim{
		temporary: initial,
		persisted: initial,
		received:  map[byte]int{},
	}
}

func (s *mothSim) respond(req []byte) []byte {
	op := req[0]
	s.received[op]++

	resp := make([]byte, hid.ReportSize)
	resp[0] = op
	switch op {
	case opGetConfig:
		putRecord(resp[1:], s.temporary)
	case opSetConfig:
		s.temporary = getRecord(req[1:])
		putRecord(resp[1:], s.temporary)
	case opPersist:
		s.persisted = s.temporary
	case opRestore:
		s.temporary = s.persisted
	}
	return resp
}

func mothInfo(serial string) hid.DeviceInfo {
	return hid.DeviceInfo{
		Path:      "usb:" + serial,
		VendorID:  VendorID,
		ProductID: ProductID,
		Serial:    serial,
		Product:   "AudioMoth",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// simClient wires a Client to a single simulated AudioMoth and returns the
// opened handle alongside the simulator for state assertions.
func simClient(t *testing.T, sim *mothSim) (*Client, *Handle) {
	t.Helper()
	mgr := &hid.MockManager{
		Devices: []hid.DeviceInfo{mothInfo("A001")},
		OpenFunc: func(info hid.DeviceInfo) (hid.Device, error) {
			return &hid.MockDevice{DeviceInfo: info, Respond: sim.respond}, nil
		},
	}
	client, err := New(WithManager(mgr), WithLogger(quietLogger()))
	require.NoError(t, err)
	h, err := client.Find("")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return client, h
}

func TestGetConfig(t *testing.T) {
	sim := newMothSim(validConfig())
	client, h := simClient(t, sim)

	got, err := client.GetConfig(h)
	require.NoError(t, err)
	assert.Equal(t, sim.temporary, got)
}

func TestSetConfigMergesOverrides(t *testing.T) {
	sim := newMothSim(validConfig())
	client, h := simClient(t, sim)

	gain := uint8(4)
	higher := uint16(20000)
	got, err := client.SetConfig(h, Overrides{Gain: &gain, HigherFilterFreq: &higher})
	require.NoError(t, err)

	want := validConfig()
	want.Gain = 4
	want.HigherFilterFreq = 20000
	assert.Equal(t, want, got, "exactly the present fields replaced")
	assert.Equal(t, want, sim.temporary, "device temporary updated")
	assert.Equal(t, 1, sim.received[opSetConfig])
	assert.Equal(t, 1, sim.received[opGetConfig], "one read for the merge")
}

func TestSetConfigEmptyOverrides(t *testing.T) {
	sim := newMothSim(validConfig())
	client, h := simClient(t, sim)

	got, err := client.SetConfig(h, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, validConfig(), got)
	assert.Equal(t, 1, sim.received[opSetConfig], "the identical record is still written")
}

func TestSetConfigInvariantViolationSkipsWrite(t *testing.T) {
	sim := newMothSim(validConfig())
	client, h := simClient(t, sim)

	lower := uint16(20000) // current higher filter bound is 12000
	_, err := client.SetConfig(h, Overrides{LowerFilterFreq: &lower})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, sim.received[opSetConfig], "device never contacted for the SET step")
	assert.Equal(t, validConfig(), sim.temporary, "device state untouched")
}

func TestSetConfigDomainViolation(t *testing.T) {
	sim := newMothSim(validConfig())
	client, h := simClient(t, sim)

	gain := uint8(5)
	_, err := client.SetConfig(h, Overrides{Gain: &gain})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, sim.received[opSetConfig])
}

func TestPersistAndRestoreAreIdempotent(t *testing.T) {
	sim := newMothSim(validConfig())
	client, h := simClient(t, sim)

	gain := uint8(3)
	_, err := client.SetConfig(h, Overrides{Gain: &gain})
	require.NoError(t, err)

	require.NoError(t, client.Persist(h))
	afterFirst := sim.persisted
	require.NoError(t, client.Persist(h))
	assert.Equal(t, afterFirst, sim.persisted, "second persist is a no-op")
	assert.Equal(t, sim.temporary, sim.persisted)

	gain = 0
	_, err = client.SetConfig(h, Overrides{Gain: &gain})
	require.NoError(t, err)
	require.NotEqual(t, sim.temporary, sim.persisted)

	require.NoError(t, client.Restore(h))
	assert.Equal(t, sim.persisted, sim.temporary)
	afterRestore := sim.temporary
	require.NoError(t, client.Restore(h))
	assert.Equal(t, afterRestore, sim.temporary, "second restore is a no-op")
}

func TestSilentDeviceTimesOut(t *testing.T) {
	mgr := &hid.MockManager{
		Devices: []hid.DeviceInfo{mothInfo("A001")},
		OpenFunc: func(info hid.DeviceInfo) (hid.Device, error) {
			return &hid.MockDevice{DeviceInfo: info, Silent: true}, nil
		},
	}
	client, err := New(WithManager(mgr), WithLogger(quietLogger()), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	h, err := client.Find("")
	require.NoError(t, err)
	defer h.Close()

	start := time.Now()
	_, err = client.GetConfig(h)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second, "fails within the bound instead of hanging")
}

func TestTransportFailureClassified(t *testing.T) {
	mgr := &hid.MockManager{
		Devices: []hid.DeviceInfo{mothInfo("A001")},
		OpenFunc: func(info hid.DeviceInfo) (hid.Device, error) {
			return &hid.MockDevice{DeviceInfo: info, WriteErr: io.ErrClosedPipe}, nil
		},
	}
	client, err := New(WithManager(mgr), WithLogger(quietLogger()))
	require.NoError(t, err)
	h, err := client.Find("")
	require.NoError(t, err)
	defer h.Close()

	_, err = client.GetConfig(h)
	require.ErrorIs(t, err, ErrTransport)
}

func TestFindSelectsBySerial(t *testing.T) {
	mgr := &hid.MockManager{
		Devices: []hid.DeviceInfo{
			{Path: "usb:kbd", VendorID: 0x046D, ProductID: 0xC31C, Serial: "KBD"},
			mothInfo("A001"),
			mothInfo("A002"),
		},
	}
	client, err := New(WithManager(mgr), WithLogger(quietLogger()))
	require.NoError(t, err)

	t.Run("explicit serial", func(t *testing.T) {
		h, err := client.Find("A002")
		require.NoError(t, err)
		defer h.Close()
		assert.Equal(t, "A002", h.Info().Serial)
	})

	t.Run("no serial takes first enumerated", func(t *testing.T) {
		h, err := client.Find("")
		require.NoError(t, err)
		defer h.Close()
		assert.Equal(t, "A001", h.Info().Serial)
	})

	t.Run("unknown serial", func(t *testing.T) {
		_, err := client.Find("ZZZZ")
		require.ErrorIs(t, err, ErrDeviceNotFound)
	})
}

func TestFindWithNothingAttached(t *testing.T) {
	client, err := New(WithManager(&hid.MockManager{}), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = client.Find("")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestEnumerateFiltersSignature(t *testing.T) {
	mgr := &hid.MockManager{
		Devices: []hid.DeviceInfo{
			{Path: "usb:kbd", VendorID: 0x046D, ProductID: 0xC31C, Serial: "KBD"},
			mothInfo("A001"),
			{Path: "usb:other", VendorID: VendorID, ProductID: 0x0001, Serial: "SAME-VID"},
		},
	}
	client, err := New(WithManager(mgr), WithLogger(quietLogger()))
	require.NoError(t, err)

	moths, err := client.Enumerate()
	require.NoError(t, err)
	require.Len(t, moths, 1)
	assert.Equal(t, "A001", moths[0].Serial)
}
