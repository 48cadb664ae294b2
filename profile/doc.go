// Package profile provides optional runtime profiling for sout.
//
// Profiling is compiled in only with the "pprof" build tag, which integrates
// [github.com/pkg/profile] and registers the [net/http/pprof] handlers.
// Without the tag every operation is a no-op and [Modes] is empty.
//
//	go build -tags pprof .
//	sout --pprof-mode cpu --pprof-dir ./profiles render page.sout -d data.yaml
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// A [Profiler] is started around the work to be measured:
//
//	p := profile.Profiler{Mode: "cpu", Dir: dir}
//	defer p.Start().Stop()
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
