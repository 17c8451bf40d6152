package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"
)

type sectionOptions struct {
	Name    string        `mapstructure:"name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type testOptions struct {
	Section   *sectionOptions `mapstructure:"section"`
	completed bool
}

func newTestOptions() *testOptions {
	return &testOptions{Section: &sectionOptions{Name: "default", Timeout: time.Second}}
}

func (o *testOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	fs := fss.FlagSet("section")
	fs.StringVar(&o.Section.Name, "section.name", o.Section.Name, "name")
	fs.DurationVar(&o.Section.Timeout, "section.timeout", o.Section.Timeout, "timeout")
	return fss
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error {
	var errs []error
	if o.Section.Name == "" {
		errs = append(errs, assert.AnError)
	}
	return utilerrors.NewAggregate(errs)
}

func run(t *testing.T, opts *testOptions, args ...string) error {
	t.Helper()
	a := NewApp("test-app", "test", WithOptions(opts), WithDefaultValidArgs(), WithRunFunc(func() error { return nil }))
	a.Command().SetArgs(args)
	return a.Command().Execute()
}

func TestFlagsOverrideDefaults(t *testing.T) {
	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--section.name", "flag", "--section.timeout", "3s"))

	assert.True(t, opts.completed)
	assert.Equal(t, "flag", opts.Section.Name)
	assert.Equal(t, 3*time.Second, opts.Section.Timeout)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("section:\n  name: file\n  timeout: 5s\n"), 0o600))

	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--config", path))
	assert.Equal(t, "file", opts.Section.Name)
	assert.Equal(t, 5*time.Second, opts.Section.Timeout)

	opts = newTestOptions()
	require.NoError(t, run(t, opts, "--config", path, "--section.name", "flag"))
	assert.Equal(t, "flag", opts.Section.Name)
}

func TestMissingConfigFile(t *testing.T) {
	err := run(t, newTestOptions(), "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read configuration file")
}

func TestValidationFailureStopsRun(t *testing.T) {
	called := false
	opts := newTestOptions()
	a := NewApp("test-app", "test", WithOptions(opts), WithRunFunc(func() error {
		called = true
		return nil
	}))
	a.Command().SetArgs([]string{"--section.name="})
	assert.Error(t, a.Command().Execute())
	assert.False(t, called)
}

func TestDefaultValidArgs(t *testing.T) {
	assert.ErrorContains(t, run(t, newTestOptions(), "extra"), "does not take any arguments")
}

func TestSubCommands(t *testing.T) {
	ran := ""
	child := NewApp("child", "child", WithNoConfig(), WithRunFunc(func() error {
		ran = "child"
		return nil
	}))
	parent := NewApp("parent", "parent", WithSubCommands(child.Command()))
	parent.Command().SetArgs([]string{"child"})
	require.NoError(t, parent.Command().Execute())
	assert.Equal(t, "child", ran)

	var flags []string
	parent.Command().Flags().VisitAll(func(f *pflag.Flag) { flags = append(flags, f.Name) })
	assert.Contains(t, flags, "config")
}
