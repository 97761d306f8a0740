// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads QRCodeHelper configuration.
//
// Precedence is ENV > YAML file > defaults. The YAML file is parsed
// strictly: unknown keys, multiple documents and trailing content are
// rejected. Environment keys are prefixed with QRHELPER_.
package config
