package experiment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"

	"github.com/san-kum/dynobj/internal/models"
	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

var log = commonlog.GetLogger("dynobj.experiment")

type Config struct {
	Seed     int64
	Capacity int
	// Glider overrides parameters of the simulated glider behind every
	// airframe, such as "mass" or "glide_ratio".
	Glider map[string]float64
}

// Record is the outcome of one send.
type Record struct {
	Step     int                `json:"step"`
	Instance string             `json:"instance"`
	Class    string             `json:"class"`
	Method   string             `json:"method"`
	Args     []float64          `json:"args,omitempty"`
	Output   string             `json:"output"`
	Err      string             `json:"error,omitempty"`
	Failed   bool               `json:"failed"`
	State    string             `json:"state"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Snapshot is the CBOR encoding of an instance payload after a step.
// Step 0 holds the payloads as constructed.
type Snapshot struct {
	Step     int             `cbor:"step"`
	Instance string          `cbor:"instance"`
	Class    string          `cbor:"class"`
	Payload  cbor.RawMessage `cbor:"payload"`
}

type Result struct {
	Scenario  string
	Seed      int64
	Records   []Record
	Snapshots []Snapshot
	Failures  int
	Leaked    int
	Metrics   map[string]float64
}

type Experiment struct {
	cfg      Config
	scenario *Scenario
	reg      *object.Registry
	catalog  *models.Catalog
	enc      cbor.EncMode

	bound  map[string]*object.Instance
	order  []string
	plan   []StepSpec
	next   int
	closed bool
	result *Result
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds a registry, installs the application classes and creates
// the scenario's instances. Any instance created before a failure is
// destroyed again.
func (e *Experiment) Setup(s *Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}

	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}

	reg := object.NewRegistry(object.Options{Capacity: e.cfg.Capacity})
	catalog, err := models.Install(reg)
	if err != nil {
		return err
	}

	e.scenario = s
	e.reg = reg
	e.catalog = catalog
	e.enc = enc
	e.bound = make(map[string]*object.Instance, len(s.Instances))
	e.order = e.order[:0]
	e.next = 0
	e.closed = false
	e.result = &Result{Scenario: s.Name, Seed: e.cfg.Seed}

	for i, spec := range s.Instances {
		inst, err := e.create(spec, e.cfg.Seed+int64(i))
		if err != nil {
			e.destroyAll()
			e.result = nil
			return fmt.Errorf("setup %s: instance %s: %w", s.Name, spec.Name, err)
		}
		e.bound[spec.Name] = inst
		e.order = append(e.order, spec.Name)
		if err := e.snapshot(0, spec.Name, inst); err != nil {
			e.destroyAll()
			e.result = nil
			return err
		}
	}

	e.plan = e.plan[:0]
	for _, step := range s.Steps {
		for i := 0; i < step.times(); i++ {
			e.plan = append(e.plan, step)
		}
	}

	log.Infof("scenario %s: %d instances, %d steps, seed %d", s.Name, len(s.Instances), len(e.plan), e.cfg.Seed)
	return nil
}

func (e *Experiment) create(spec InstanceSpec, seed int64) (*object.Instance, error) {
	class, ok := e.reg.Class(spec.Class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownClass, spec.Class)
	}
	payload, err := models.NewPayload(spec.Class, spec.Preset)
	if err != nil {
		return nil, err
	}
	env := &models.Env{Source: sensor.NewRandom(seed), Glider: e.cfg.Glider}
	inst, err := e.reg.Create(class, payload, env)
	if err != nil {
		return nil, err
	}
	log.Debugf("created %s as %s", spec.Name, inst)
	return inst, nil
}

func (e *Experiment) Registry() *object.Registry { return e.reg }
func (e *Experiment) Catalog() *models.Catalog   { return e.catalog }
func (e *Experiment) Scenario() *Scenario        { return e.scenario }

// Instance returns the live instance bound to name.
func (e *Experiment) Instance(name string) (*object.Instance, bool) {
	inst, ok := e.bound[name]
	return inst, ok
}

func (e *Experiment) Done() bool {
	return e.result == nil || e.closed || e.next >= len(e.plan)
}

// Progress returns the number of steps taken and the total.
func (e *Experiment) Progress() (int, int) {
	return e.next, len(e.plan)
}

// Next performs the next planned send. A method error does not stop the
// scenario; it is recorded and counted as a failure unless the step
// expected it.
func (e *Experiment) Next() (Record, error) {
	if e.result == nil {
		return Record{}, ErrNotSetup
	}
	if e.closed || e.next >= len(e.plan) {
		return Record{}, ErrFinished
	}

	step := e.plan[e.next]
	e.next++
	inst := e.bound[step.Instance]

	args := make([]any, len(step.Args))
	for i, v := range step.Args {
		args[i] = v
	}

	rec := Record{
		Step:     e.next,
		Instance: step.Instance,
		Class:    inst.Class().Name(),
		Method:   step.Method,
		Args:     step.Args,
	}

	out, err := e.reg.Send(inst, step.Method, args...)
	rec.Output = formatResult(out)
	if err != nil {
		rec.Err = err.Error()
	}
	rec.State = inst.State().String()
	rec.Metrics = e.metrics(inst)

	if mismatch := checkExpectation(step, err); mismatch != nil {
		rec.Failed = true
		e.result.Failures++
		log.Warningf("%v", &StepError{Step: rec.Step, Instance: step.Instance, Method: step.Method, Wrapped: mismatch})
	} else {
		log.Debugf("step %d %s.%s ok", rec.Step, step.Instance, step.Method)
	}

	e.result.Records = append(e.result.Records, rec)
	if err := e.snapshot(rec.Step, step.Instance, inst); err != nil {
		return rec, err
	}
	return rec, nil
}

func checkExpectation(step StepSpec, err error) error {
	switch {
	case step.ExpectError == "" && err != nil:
		return err
	case step.ExpectError != "" && err == nil:
		return fmt.Errorf("expected error containing %q", step.ExpectError)
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		return fmt.Errorf("expected error containing %q: %w", step.ExpectError, err)
	}
	return nil
}

func (e *Experiment) metrics(inst *object.Instance) map[string]float64 {
	if !e.reg.RespondsTo(inst, "metrics") {
		return nil
	}
	out, err := e.reg.Send(inst, "metrics")
	if err != nil {
		return nil
	}
	m, ok := out.(models.Metrics)
	if !ok {
		return nil
	}
	return map[string]float64(m)
}

func (e *Experiment) snapshot(step int, name string, inst *object.Instance) error {
	payload, err := e.reg.Payload(inst)
	if err != nil {
		// Destroyed instances have nothing left to record.
		return nil
	}
	data, err := e.enc.Marshal(payload)
	if err != nil {
		return fmt.Errorf("snapshot %s at step %d: %w", name, step, err)
	}
	e.result.Snapshots = append(e.result.Snapshots, Snapshot{
		Step:     step,
		Instance: name,
		Class:    inst.Class().Name(),
		Payload:  data,
	})
	return nil
}

// Close records the final metrics of every instance, destroys them and
// reports how many instances the registry still holds.
func (e *Experiment) Close() (*Result, error) {
	if e.result == nil {
		return nil, ErrNotSetup
	}
	if e.closed {
		return e.result, nil
	}

	final := make(map[string]float64)
	for _, name := range e.order {
		for k, v := range e.metrics(e.bound[name]) {
			final[name+"."+k] = v
		}
	}
	e.result.Metrics = final

	err := e.destroyAll()
	e.result.Leaked = e.reg.Live()
	e.closed = true

	if e.result.Leaked > 0 {
		log.Warningf("scenario %s left %d live instances", e.scenario.Name, e.result.Leaked)
	}
	log.Infof("scenario %s finished: %d steps, %d failures", e.scenario.Name, len(e.result.Records), e.result.Failures)
	return e.result, err
}

func (e *Experiment) destroyAll() error {
	var errs []error
	for _, name := range e.order {
		if err := e.reg.Destroy(e.bound[name]); err != nil {
			errs = append(errs, fmt.Errorf("destroy %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Run performs every remaining step and closes the experiment. It stops
// early when ctx is canceled.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	return e.RunEach(ctx, nil)
}

// RunEach is Run with fn called on the record of every step taken. When a
// step fails or ctx is canceled the experiment is still closed; any error
// from Close is joined to the one that stopped the run.
func (e *Experiment) RunEach(ctx context.Context, fn func(Record)) (*Result, error) {
	if e.result == nil {
		return nil, ErrNotSetup
	}

	for !e.Done() {
		if err := ctx.Err(); err != nil {
			res, cerr := e.Close()
			return res, errors.Join(err, cerr)
		}

		rec, err := e.Next()
		if err != nil {
			res, cerr := e.Close()
			return res, errors.Join(err, cerr)
		}
		if fn != nil {
			fn(rec)
		}
	}

	return e.Close()
}

func formatResult(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	case models.Metrics:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%.3f", k, v[k])
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(out)
}
