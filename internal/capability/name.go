package capability

import "strings"

// NameSeparator joins a class identifier and a method name into a qualified
// tool name. Neither part may contain it; this is not validated.
const NameSeparator = "___"

// QualifiedName returns "<className>___<method>".
func QualifiedName(className, method string) string {
	return className + NameSeparator + method
}

// SplitQualifiedName is the inverse of QualifiedName. A name without the
// separator yields an empty method.
func SplitQualifiedName(name string) (className, method string) {
	className, method, _ = strings.Cut(name, NameSeparator)
	return className, method
}
