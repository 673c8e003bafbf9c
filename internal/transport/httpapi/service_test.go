package httpapi_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/crashwatch/crashwatch/internal/detector"
	"github.com/crashwatch/crashwatch/internal/journal"
	"github.com/crashwatch/crashwatch/internal/transport/httpapi"
)

type fakeSink struct {
	published []detector.CrashResult
}

func (f *fakeSink) Publish(_ context.Context, crash detector.CrashResult) {
	f.published = append(f.published, crash)
}

type event struct {
	accel bool
	t, v  float64
}

func constSeries(n int, hz, v float64, spikes map[float64]float64) []event {
	out := make([]event, n)
	dt := 1.0 / hz
	for i := 0; i < n; i++ {
		tv := float64(i) * dt
		sv := v
		if override, ok := spikes[tv]; ok {
			sv = override
		}
		out[i] = event{t: tv, v: sv}
	}
	return out
}

// driveToConfirmedCrash feeds a single-hit, vehicle-stopped stream through
// the service's public API until the 90s GPS delay elapses and the crash is
// confirmed, exercising journaling and sink forwarding end to end.
func driveToConfirmedCrash(t *testing.T, service *httpapi.Service) detector.Result {
	t.Helper()
	cfg := detector.DefaultConfig()

	accel := constSeries(230*9, 9, cfg.G, map[float64]float64{100.0: 3.0 * cfg.G})
	gps := constSeries(230, 1, 0.5, nil)

	events := make([]event, 0, len(accel)+len(gps))
	for _, e := range accel {
		events = append(events, event{accel: true, t: e.t, v: e.v})
	}
	for _, e := range gps {
		events = append(events, event{accel: false, t: e.t, v: e.v})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].t < events[j].t })

	var last detector.Result
	ctx := context.Background()
	for _, e := range events {
		if e.accel {
			service.AddAccelerometer(e.t, e.v)
		} else {
			service.AddGPS(e.t, e.v)
		}
		for {
			r := service.Process(ctx)
			if r.Type == detector.ResultCrashGPS {
				last = r
			}
			if r.Type == detector.ResultNone || !r.MoreWork {
				break
			}
		}
	}
	return last
}

func TestService_ConfirmedCrashJournaledAndPublished(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "crashwatch.db"), journal.DefaultConfig())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer j.Close()

	sink := &fakeSink{}
	det := detector.New(detector.DefaultConfig())
	service := httpapi.NewService(det, j, sink)

	result := driveToConfirmedCrash(t, service)
	if result.Type != detector.ResultCrashGPS {
		t.Fatalf("expected a confirmed CRASH_GPS, got %+v", result)
	}

	if len(sink.published) != 1 {
		t.Fatalf("expected exactly 1 published crash, got %d", len(sink.published))
	}

	last, ok, err := j.LastForwarded(context.Background())
	if err != nil {
		t.Fatalf("LastForwarded: %v", err)
	}
	if !ok {
		t.Fatal("expected the confirmed crash to be journaled")
	}
	if last.T != sink.published[0].T {
		t.Errorf("journaled T=%.3f does not match published T=%.3f", last.T, sink.published[0].T)
	}
}

func TestService_ApplyConfig(t *testing.T) {
	det := detector.New(detector.DefaultConfig())
	service := httpapi.NewService(det, nil, nil)

	newCfg := detector.DefaultConfig()
	newCfg.CrashThreshold = 1000.0
	service.ApplyConfig(newCfg)

	// Feed a fully-bracketed spike window (enough past and future samples
	// either side of t=10) that would classify as CRASH_IMU_ONLY at the
	// default 2.5g threshold; with the threshold raised to 1000 it must not.
	accel := constSeries(20*9, 9, newCfg.G, map[float64]float64{10.0: 3.0 * newCfg.G})
	ctx := context.Background()
	for _, e := range accel {
		service.AddAccelerometer(e.t, e.v)
		for {
			r := service.Process(ctx)
			if r.Type == detector.ResultCrashIMUOnly {
				t.Fatalf("ApplyConfig did not raise the threshold: a 3g spike still classified as a crash")
			}
			if r.Type == detector.ResultNone || !r.MoreWork {
				break
			}
		}
	}
}
