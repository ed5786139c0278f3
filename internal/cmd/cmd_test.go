package cmd

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"

	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/fc"
	"github.com/BryanSouza91/nextcopter/sim"
)

func simLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logrus.NewEntry(logger), hook
}

func TestSimHoldsRollAcrossProtocols(t *testing.T) {
	for _, proto := range []string{"cppm", "pwm", "ibus", "crsf", "elrs", "sbus", "spektrum1024", "spektrum2048"} {
		t.Run(proto, func(t *testing.T) {
			cfg := config.Default()
			cfg.Receiver.Protocol = proto
			logger, _ := simLogger()
			res, err := runSim(cfg, simOptions{Seconds: 3, Airframe: "wing", Disturbance: 20}, logger)
			if err != nil {
				t.Fatalf("runSim: %v", err)
			}
			if res.Status.State != fc.Armed || res.Status.LinkLost {
				t.Fatalf("status = %+v", res.Status)
			}
			if res.Stats.Frames == 0 {
				t.Error("no frames decoded")
			}
			if roll := res.Angle[sim.Roll]; math.Abs(roll) > 5 {
				t.Errorf("roll = %.1f, want within 5", roll)
			}
		})
	}
}

func TestSimSerialFramesClean(t *testing.T) {
	cfg := config.Default()
	logger, _ := simLogger()
	res, err := runSim(cfg, simOptions{Seconds: 1, Airframe: "wing"}, logger)
	if err != nil {
		t.Fatalf("runSim: %v", err)
	}
	// one frame every 20ms starting at zero
	if res.Stats.Frames != 50 || res.Stats.Errors != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestSimLevels(t *testing.T) {
	logger, _ := simLogger()
	res, err := runSim(config.Default(), simOptions{Seconds: 5, Airframe: "wing", Roll: 30, Pitch: -20, Level: true}, logger)
	if err != nil {
		t.Fatalf("runSim: %v", err)
	}
	if res.Status.Profile != 1 {
		t.Fatalf("profile = %d", res.Status.Profile)
	}
	if roll, pitch := res.Angle[sim.Roll], res.Angle[sim.Pitch]; math.Abs(roll) > 3 || math.Abs(pitch) > 3 {
		t.Errorf("roll %.1f pitch %.1f, want level", roll, pitch)
	}
}

func TestSimCalibrates(t *testing.T) {
	logger, hook := simLogger()
	res, err := runSim(config.Default(), simOptions{Seconds: 4, Airframe: "wing", Calibrate: true}, logger)
	if err != nil {
		t.Fatalf("runSim: %v", err)
	}
	if res.Status.State != fc.Armed || res.Status.SensorError {
		t.Fatalf("status = %+v", res.Status)
	}
	found := false
	for _, e := range hook.AllEntries() {
		if strings.HasPrefix(e.Message, "calibrated") {
			found = true
		}
	}
	if !found {
		t.Error("calibration not logged")
	}
	if roll := res.Angle[sim.Roll]; math.Abs(roll) > 2 {
		t.Errorf("roll = %.1f after calibration, want still", roll)
	}
}

func TestSimRejects(t *testing.T) {
	logger, _ := simLogger()
	if _, err := runSim(config.Default(), simOptions{Seconds: 1, Airframe: "glider"}, logger); err == nil {
		t.Error("unknown airframe accepted")
	}
	cfg := config.Default()
	cfg.Receiver.Protocol = "dsm"
	if _, err := runSim(cfg, simOptions{Seconds: 1, Airframe: "wing"}, logger); err == nil {
		t.Error("unknown protocol accepted")
	}
}

func newInitCmd(args ...string) (*cobra.Command, *bytes.Buffer) {
	c := &cobra.Command{Use: "init", RunE: InitCmdRunE}
	InitCmdFlags(c)
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs(args)
	return c, &out
}

func TestInitPrint(t *testing.T) {
	c, out := newInitCmd("--print", "--airframe", "aeroplane")
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	cfg, err := config.Parse(out.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Mixer.Channels) != 4 {
		t.Errorf("aeroplane template has %d outputs", len(cfg.Mixer.Channels))
	}
}

func TestInitWrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c, _ := newInitCmd("-o", file)
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("template not written: %v", err)
	}

	c, _ = newInitCmd("-o", file)
	if err := c.Execute(); !errors.Is(err, config.ErrExists) {
		t.Errorf("second write err = %v, want ErrExists", err)
	}
	c, _ = newInitCmd("-o", file, "-y")
	if err := c.Execute(); err != nil {
		t.Errorf("overwrite: %v", err)
	}
}

func TestInitUnknownAirframe(t *testing.T) {
	c, _ := newInitCmd("--print", "--airframe", "glider")
	if err := c.Execute(); err == nil {
		t.Error("unknown airframe accepted")
	}
}

type eofReader struct{ data []byte }

func (r *eofReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, io.EOF
}

func (r *eofReader) Close() error { return nil }

func TestTimeoutReaderHidesEOF(t *testing.T) {
	r := timeoutReader{&eofReader{data: []byte{1, 2, 3}}}
	p := make([]byte, 8)
	if n, err := r.Read(p); n != 3 || err != nil {
		t.Errorf("Read = %d, %v", n, err)
	}
	if n, err := r.Read(p); n != 0 || err != nil {
		t.Errorf("empty Read = %d, %v", n, err)
	}
}
