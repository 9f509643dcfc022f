package logger

import "testing"

func TestComponentLoggerIsMemoizedPerComponent(t *testing.T) {
	Initialize("debug", false)

	a := ComponentLogger(ComponentLoader)
	b := ComponentLogger(ComponentLoader)
	if a != b {
		t.Fatalf("ComponentLogger(%q) returned distinct instances across calls", ComponentLoader)
	}

	c := ComponentLogger(ComponentCall)
	if a == c {
		t.Fatalf("ComponentLogger(%q) and ComponentLogger(%q) must not share a logger", ComponentLoader, ComponentCall)
	}
}

func TestNamedAccessorsMatchComponentLogger(t *testing.T) {
	Initialize("info", false)

	if Loader() != ComponentLogger(ComponentLoader) {
		t.Fatalf("Loader() diverged from ComponentLogger(ComponentLoader)")
	}
	if Call() != ComponentLogger(ComponentCall) {
		t.Fatalf("Call() diverged from ComponentLogger(ComponentCall)")
	}
	if Fork() != ComponentLogger(ComponentFork) {
		t.Fatalf("Fork() diverged from ComponentLogger(ComponentFork)")
	}
	if Plugin() != ComponentLogger(ComponentPlugin) {
		t.Fatalf("Plugin() diverged from ComponentLogger(ComponentPlugin)")
	}
	if Value() != ComponentLogger(ComponentValue) {
		t.Fatalf("Value() diverged from ComponentLogger(ComponentValue)")
	}
	if HTTP() != ComponentLogger(ComponentHTTP) {
		t.Fatalf("HTTP() diverged from ComponentLogger(ComponentHTTP)")
	}
}

func TestInitializeResetsComponentCache(t *testing.T) {
	Initialize("info", false)
	before := ComponentLogger(ComponentValue)

	Initialize("info", false)
	after := ComponentLogger(ComponentValue)

	if before == after {
		t.Fatalf("Initialize should rebuild component loggers against the new global Log")
	}
}
