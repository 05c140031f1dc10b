// Package bridge lets Go types be registered as first-class classes inside a
// dynamic object runtime. A host declares a class once:
//   - Methods bind Go callables in one of four call conventions (with or
//     without arguments, with or without a returned value).
//   - Properties declare per-instance slots with a primitive default value.
//   - Class modifiers (abstract, final, interface) travel with the class.
//
// Declaration and registration are separate phases. A Class accumulates its
// methods and properties while declaring; Initialize then emits the method
// table and hands it to a Runtime, after which the class is frozen. The
// runtime later reaches Go code through the dispatch thunk stored on each
// table entry.
//
// Extension groups classes under namespaces and drives the lifecycle: Start
// registers every class once the runtime is live, Shutdown releases them.
package bridge
