// Package yamlconf loads grid and walk definitions from YAML files into the
// format-agnostic config.Model. It is the YAML counterpart of the hcl package
// and the two can be mixed freely in one directory.
package yamlconf
