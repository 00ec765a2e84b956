// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "os"

// Component is an enumeration representing the "components" which can be
// logged against. A Level can be configured on a per-component basis.
type Component int

const (
	// ComponentAll enables logging for all components.
	ComponentAll Component = iota

	// ComponentSerializer enables logging of encode calls.
	ComponentSerializer

	// ComponentDeserializer enables logging of decode calls.
	ComponentDeserializer
)

// ComponentLiteral is an enumeration representing the string literal
// "components" which can be logged against.
type ComponentLiteral string

const (
	ComponentLiteralAll          ComponentLiteral = "all"
	ComponentLiteralSerializer   ComponentLiteral = "serializer"
	ComponentLiteralDeserializer ComponentLiteral = "deserializer"
)

// Component returns the Component for the given ComponentLiteral.
func (componentLiteral ComponentLiteral) Component() Component {
	switch componentLiteral {
	case ComponentLiteralSerializer:
		return ComponentSerializer
	case ComponentLiteralDeserializer:
		return ComponentDeserializer
	default:
		return ComponentAll
	}
}

func (component Component) String() string {
	switch component {
	case ComponentSerializer:
		return string(ComponentLiteralSerializer)
	case ComponentDeserializer:
		return string(ComponentLiteralDeserializer)
	default:
		return string(ComponentLiteralAll)
	}
}

// componentEnvVar is an enumeration representing the environment variables
// which can be used to configure a component's log level.
type componentEnvVar string

const (
	componentEnvVarAll          componentEnvVar = "DBSON_LOG_ALL"
	componentEnvVarSerializer   componentEnvVar = "DBSON_LOG_SERIALIZER"
	componentEnvVarDeserializer componentEnvVar = "DBSON_LOG_DESERIALIZER"
)

var componentEnvVars = []componentEnvVar{
	componentEnvVarSerializer,
	componentEnvVarDeserializer,
}

func (env componentEnvVar) component() Component {
	switch env {
	case componentEnvVarSerializer:
		return ComponentSerializer
	case componentEnvVarDeserializer:
		return ComponentDeserializer
	default:
		return ComponentAll
	}
}

// getEnvComponentLevels returns the levels set in the environment. A level
// set with DBSON_LOG_ALL applies to every component that does not have its
// own variable set.
func getEnvComponentLevels() map[Component]Level {
	componentLevels := make(map[Component]Level)

	var globalLevel Level
	if all := os.Getenv(string(componentEnvVarAll)); all != "" {
		globalLevel = ParseLevel(all)
	}

	for _, env := range componentEnvVars {
		level := globalLevel
		if str := os.Getenv(string(env)); str != "" {
			level = ParseLevel(str)
		}
		if level != LevelOff {
			componentLevels[env.component()] = level
		}
	}

	return componentLevels
}
