// Package choices serves the option lists of yes/no and multi-choice fields as
// JSON, so large option sets can be searched instead of rendered inline.
//
// The handler responds to GET and HEAD. The entity and field are selected by
// query parameters, the result set by q and limit. Responses have the shape
// {"data":[{"value":..,"label":..}]}.
package choices
