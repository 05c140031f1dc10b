package bridge

import (
	"errors"
	"fmt"
)

type recordedProperty struct {
	name  string
	value Value
	flags Flags
}

type recordedClass struct {
	def        *ClassDefinition
	properties []recordedProperty
	released   int
}

func (rc *recordedClass) ClassName() string { return rc.def.Name }

// recordingRuntime keeps every registration so tests can read the emitted
// tables back.
type recordingRuntime struct {
	classes      map[string]*recordedClass
	order        []string
	failRegister map[string]error
	failProperty map[string]error
	releases     int
}

func newRecordingRuntime() *recordingRuntime {
	return &recordingRuntime{
		classes:      make(map[string]*recordedClass),
		failRegister: make(map[string]error),
		failProperty: make(map[string]error),
	}
}

func (rt *recordingRuntime) RegisterClass(def *ClassDefinition) (Handle, error) {
	if err, ok := rt.failRegister[def.Name]; ok {
		return nil, err
	}
	if _, exists := rt.classes[def.Name]; exists {
		return nil, fmt.Errorf("class %s already exists", def.Name)
	}
	rc := &recordedClass{def: def}
	rt.classes[def.Name] = rc
	rt.order = append(rt.order, def.Name)
	return rc, nil
}

func (rt *recordingRuntime) DeclareProperty(h Handle, name string, value Value, flags Flags) error {
	if err, ok := rt.failProperty[name]; ok {
		return err
	}
	rc := h.(*recordedClass)
	rc.properties = append(rc.properties, recordedProperty{name: name, value: value, flags: flags})
	return nil
}

func (rt *recordingRuntime) ReleaseClass(h Handle) error {
	rc, ok := h.(*recordedClass)
	if !ok {
		return errors.New("foreign handle")
	}
	if rt.classes[rc.def.Name] != rc {
		return fmt.Errorf("class %s not registered", rc.def.Name)
	}
	rc.released++
	rt.releases++
	delete(rt.classes, rc.def.Name)
	return nil
}

func (rt *recordingRuntime) class(name string) *recordedClass {
	return rt.classes[name]
}
