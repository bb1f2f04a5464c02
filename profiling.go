package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/profile"
)

// profileModes are the values --profile accepts.
var profileModes = map[string]func(*profile.Profile){
	"cpu":   profile.CPUProfile,
	"heap":  profile.MemProfileHeap,
	"block": profile.BlockProfile,
	"mutex": profile.MutexProfile,
	"trace": profile.TraceProfile,
}

func profileModeNames() string {
	names := make([]string, 0, len(profileModes))
	for n := range profileModes {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// profileMode looks up a --profile value. Case is ignored.
func profileMode(name string) (func(*profile.Profile), error) {
	mode, ok := profileModes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q: expected one of %s", name, profileModeNames())
	}
	return mode, nil
}

// startProfile starts the named profile, written into dir when stopped. An
// empty name profiles nothing.
func startProfile(name, dir string) (stop func(), err error) {
	if name == "" {
		return func() {}, nil
	}
	mode, err := profileMode(name)
	if err != nil {
		return nil, err
	}
	p := profile.Start(mode, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	log(LogCatgApp, "Profiling %s into %s\n", name, dir)
	return p.Stop, nil
}
