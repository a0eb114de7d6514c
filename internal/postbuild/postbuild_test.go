package postbuild

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kodedot/kodebuild/internal/config"
	"github.com/kodedot/kodebuild/internal/logger"
	"github.com/kodedot/kodebuild/internal/props"
	"github.com/kodedot/kodebuild/internal/runner"
	"github.com/kodedot/kodebuild/internal/uf2"
)

const sampleHex = ":020000040002F8\n:0400000001020304F2\n:00000001FF\n"

var testVersion = props.Version{Short: "2.5.20", Long: "2.5.20.4c97351"}

func testConfig(t *testing.T, platform string) *config.Config {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Project.Platform = platform
	cfg.Project.Env = "kode_dot"
	cfg.Project.BuildDir = t.TempDir()
	return cfg
}

func noRunner(t *testing.T) runner.Runner {
	return runner.Func(func(_ context.Context, name string, _ ...string) ([]byte, error) {
		t.Errorf("unexpected command %s", name)
		return nil, errors.New("unexpected")
	})
}

func TestRenderName(t *testing.T) {
	got := RenderName(config.DefaultRenamePattern, "firmware", "kode_dot", "2.5.20.abc")
	if got != "firmware-kode_dot-2.5.20.abc.bin" {
		t.Errorf("RenderName() = %q", got)
	}
}

func TestESP32CopiesVersionedBinary(t *testing.T) {
	cfg := testConfig(t, config.PlatformESP32)
	bin := []byte{0xE9, 0x01, 0x02}
	if err := os.WriteFile(filepath.Join(cfg.Project.BuildDir, "firmware.bin"), bin, 0o600); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	p := New(cfg, noRunner(t), logger.New(&logger.Config{Output: &logs}))
	res, err := p.Run(context.Background(), testVersion)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(cfg.Project.BuildDir, "firmware-kode_dot-2.5.20.4c97351.bin")
	if !reflect.DeepEqual(res.Artifacts, []string{want}) {
		t.Fatalf("Artifacts = %v", res.Artifacts)
	}
	got, err := os.ReadFile(want)
	if err != nil || !bytes.Equal(got, bin) {
		t.Errorf("copied binary = % x, %v", got, err)
	}
	if !strings.Contains(logs.String(), "Ready for upload to 0x400000") {
		t.Errorf("missing upload hint in logs:\n%s", logs.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.Project.BuildDir, "firmware.bin")); err != nil {
		t.Error("original binary must stay in place")
	}
}

func TestESP32MissingBinaryIsNotFatal(t *testing.T) {
	cfg := testConfig(t, config.PlatformESP32)
	var logs bytes.Buffer
	p := New(cfg, noRunner(t), logger.New(&logger.Config{Output: &logs}))

	if _, err := p.Run(context.Background(), testVersion); err == nil {
		t.Fatal("Run() expected error")
	}

	logs.Reset()
	res := p.Process(context.Background(), testVersion)
	if len(res.Artifacts) != 0 {
		t.Errorf("Artifacts = %v", res.Artifacts)
	}
	if !strings.Contains(logs.String(), "continuing") {
		t.Errorf("failure not logged:\n%s", logs.String())
	}
}

func TestNRF52NativeUF2(t *testing.T) {
	cfg := testConfig(t, config.PlatformNRF52)
	if err := os.WriteFile(filepath.Join(cfg.Project.BuildDir, "firmware.hex"), []byte(sampleHex), 0o600); err != nil {
		t.Fatal(err)
	}

	p := New(cfg, noRunner(t), logger.Discard())
	res, err := p.Run(context.Background(), testVersion)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(res.Artifacts[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != uf2.BlockSize {
		t.Fatalf("uf2 size = %d", len(data))
	}
	if !bytes.Equal(data[28:32], []byte{0x40, 0x28, 0xA5, 0xAD}) {
		t.Errorf("family bytes = % x", data[28:32])
	}
	leftovers, _ := filepath.Glob(filepath.Join(cfg.Project.BuildDir, ".kodebuild-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestNRF52BadHexLeavesNoUF2(t *testing.T) {
	cfg := testConfig(t, config.PlatformNRF52)
	if err := os.WriteFile(filepath.Join(cfg.Project.BuildDir, "firmware.hex"), []byte(":0100000000FE\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := New(cfg, noRunner(t), logger.Discard())
	if _, err := p.Run(context.Background(), testVersion); err == nil {
		t.Fatal("Run() expected error")
	}
	if _, err := os.Stat(filepath.Join(cfg.Project.BuildDir, "firmware.uf2")); !os.IsNotExist(err) {
		t.Errorf("uf2 should not exist, stat error = %v", err)
	}
}

func TestNRF52Helper(t *testing.T) {
	cfg := testConfig(t, config.PlatformNRF52)
	cfg.UF2.Helper = `"/usr/bin/python3" ./bin/uf2conv.py`

	var gotName string
	var gotArgs []string
	r := runner.Func(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("Wrote 1024 bytes\n"), nil
	})

	p := New(cfg, r, logger.Discard())
	if _, err := p.Run(context.Background(), testVersion); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dir := cfg.Project.BuildDir
	wantArgs := []string{
		"./bin/uf2conv.py",
		filepath.Join(dir, "firmware.hex"),
		"-c", "-f", "0xADA52840",
		"-o", filepath.Join(dir, "firmware.uf2"),
	}
	if gotName != "/usr/bin/python3" || !reflect.DeepEqual(gotArgs, wantArgs) {
		t.Errorf("helper called as %s %q", gotName, gotArgs)
	}
}

func TestNRF52HelperFailure(t *testing.T) {
	cfg := testConfig(t, config.PlatformNRF52)
	cfg.UF2.Helper = "uf2conv"
	r := runner.Func(func(context.Context, string, ...string) ([]byte, error) {
		return nil, runner.ErrExecutionFailed
	})

	p := New(cfg, r, logger.Discard())
	if _, err := p.Run(context.Background(), testVersion); !errors.Is(err, runner.ErrExecutionFailed) {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRunUnsupportedAndMissingBuildDir(t *testing.T) {
	cfg := testConfig(t, "")
	p := New(cfg, noRunner(t), logger.Discard())
	if _, err := p.Run(context.Background(), testVersion); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("Run() error = %v, want ErrUnsupportedPlatform", err)
	}

	cfg.Project.BuildDir = ""
	if _, err := p.Run(context.Background(), testVersion); !errors.Is(err, ErrNoBuildDir) {
		t.Errorf("Run() error = %v, want ErrNoBuildDir", err)
	}
}

func TestConvertBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "app.bin")
	if err := os.WriteFile(bin, bytes.Repeat([]byte{1}, 300), 0o600); err != nil {
		t.Fatal(err)
	}
	n, err := ConvertBinary(bin, filepath.Join(dir, "app.uf2"), uf2.DefaultBaseAddress, uf2.FamilyNRF52840)
	if err != nil || n != 2 {
		t.Errorf("ConvertBinary() = %d, %v", n, err)
	}
}
