package mcp

import "sort"

// JSON Schema builders for tool input. Kept as plain maps so the wire shape
// is obvious.

func objectSchema(props map[string]any, required []string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	sort.Strings(required)

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func stringListProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

func mapProp(description string) map[string]any {
	return map[string]any{"type": "object", "description": description}
}

// idSchema is the single-id input shared by get/close/delete project tools.
func idSchema() map[string]any {
	return objectSchema(map[string]any{
		"id": stringProp("Project id"),
	}, []string{"id"})
}

func createProjectSchema() map[string]any {
	return objectSchema(map[string]any{
		"id":           stringProp("Project id, unique across the store"),
		"nombre":       stringProp("Project name"),
		"descripcion":  stringProp("Project description"),
		"responsables": stringListProp("Project owners"),
		"etiquetas":    stringListProp("Project tags"),
	}, []string{"id", "nombre"})
}

// idsSchema builds a schema requiring each of the given id fields.
func idsSchema(ids ...string) map[string]any {
	props := map[string]any{}
	for _, id := range ids {
		props[id] = stringProp(id)
	}
	return objectSchema(props, ids)
}

// payloadSchema is ids plus a required open creation payload.
func payloadSchema(ids ...string) map[string]any {
	props := map[string]any{
		"payload": mapProp("Entity payload; unrecognized fields become custom fields"),
	}
	for _, id := range ids {
		props[id] = stringProp(id)
	}
	return objectSchema(props, append(ids, "payload"))
}

// updatesSchema is ids plus a required partial-update mapping.
func updatesSchema(ids ...string) map[string]any {
	props := map[string]any{
		"updates": mapProp("Field name to new value mapping"),
	}
	for _, id := range ids {
		props[id] = stringProp(id)
	}
	return objectSchema(props, append(ids, "updates"))
}
