// Package template is the seam between the HTML renderer and its template
// engine. The pongo subpackage implements it with pongo2.
package template
