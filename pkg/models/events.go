/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"errors"
	"time"
)

var errNATSURLRequired = errors.New("nats url is required")

// NATSConfig configures the optional host event stream.
type NATSConfig struct {
	URL    string `json:"url" yaml:"url"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Stream string `json:"stream,omitempty" yaml:"stream,omitempty"`

	// TLS is optional; when set the connection uses mutual TLS.
	TLS *TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLSConfig names the PEM files for a mutual TLS client.
type TLSConfig struct {
	CertFile   string `json:"cert_file" yaml:"cert_file"`
	KeyFile    string `json:"key_file" yaml:"key_file"`
	CAFile     string `json:"ca_file" yaml:"ca_file"`
	ServerName string `json:"server_name,omitempty" yaml:"server_name,omitempty"`
}

// Validate ensures the NATS configuration is valid and fills defaults.
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return errNATSURLRequired
	}

	if c.Stream == "" {
		c.Stream = "HOSTS"
	}

	return nil
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// HostEventKind says what a reconcile step did with a record.
type HostEventKind string

const (
	HostInserted HostEventKind = "inserted"
	HostMerged   HostEventKind = "merged"
)

// HostEvent is emitted after a canonical host record was written.
type HostEvent struct {
	Kind      HostEventKind     `json:"kind"`
	HostID    string            `json:"host_id"`
	Source    string            `json:"source,omitempty"`
	Identity  map[string]string `json:"identity,omitempty"`
	Host      *HostRecord       `json:"host"`
	Timestamp time.Time         `json:"timestamp"`
}
