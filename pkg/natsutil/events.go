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

// Package natsutil publishes host events to NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
)

const (
	// SubjectPrefix is followed by the event kind, e.g. hosts.reconciled.merged.
	SubjectPrefix = "hosts.reconciled"

	eventSource = "hostsync/reconcile"
	typePrefix  = "com.carverauto.hostsync.host."
)

var errNilEvent = errors.New("host event is nil")

// HostEventPublisher provides methods for publishing host CloudEvents to NATS JetStream.
type HostEventPublisher struct {
	js     jetstream.JetStream
	stream string
	logger logger.Logger
}

// NewHostEventPublisher creates a publisher writing into streamName.
func NewHostEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *HostEventPublisher {
	if log == nil {
		log = logger.Global()
	}

	return &HostEventPublisher{
		js:     js,
		stream: streamName,
		logger: log.WithComponent("natsutil"),
	}
}

// Subject returns the subject events of kind are published on.
func Subject(kind models.HostEventKind) string {
	return SubjectPrefix + "." + string(kind)
}

// PublishHostEvent wraps event in a CloudEvent and publishes it.
func (p *HostEventPublisher) PublishHostEvent(ctx context.Context, event *models.HostEvent) error {
	if event == nil {
		return errNilEvent
	}

	ts := event.Timestamp

	ce := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            typePrefix + string(event.Kind),
		DataContentType: "application/json",
		Subject:         Subject(event.Kind),
		Time:            &ts,
		Data:            event,
	}

	payload, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("failed to marshal host event: %w", err)
	}

	ack, err := p.js.Publish(ctx, ce.Subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish host event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", ce.ID).
		Str("subject", ce.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published host event")

	return nil
}

// EnsureStream creates streamName if it does not exist, or adds the host
// subjects to it when an existing stream does not cover them.
func EnsureStream(ctx context.Context, js jetstream.JetStream, streamName string) (jetstream.Stream, error) {
	want := SubjectPrefix + ".>"

	stream, err := js.Stream(ctx, streamName)
	if err == nil {
		cfg := stream.CachedInfo().Config

		subjects := ensureSubjectList(append([]string(nil), cfg.Subjects...), want)
		if len(subjects) == len(cfg.Subjects) {
			return stream, nil
		}

		cfg.Subjects = subjects

		return js.UpdateStream(ctx, cfg)
	}

	if !isStreamMissingErr(err) {
		return nil, fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	stream, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{want},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}

	return stream, nil
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}

// ensureSubjectList appends subject unless a pattern already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether pattern covers subject using NATS wildcard
// rules. A subject that is itself a wildcard is covered only by a pattern at
// least as broad.
func matchesSubject(pattern, subject string) bool {
	p := strings.Split(pattern, ".")
	s := strings.Split(subject, ".")

	for i, tok := range p {
		if tok == ">" {
			return len(s) > i
		}

		if i >= len(s) {
			return false
		}

		switch {
		case tok == "*":
			if s[i] == ">" {
				return false
			}
		case tok != s[i]:
			return false
		}
	}

	return len(p) == len(s)
}

// Connect dials NATS, builds a JetStream context (optionally for a domain),
// ensures the stream exists and returns a publisher for it. The caller owns the
// returned connection.
func Connect(ctx context.Context, cfg *models.NATSConfig, log logger.Logger, extraOpts ...nats.Option) (*HostEventPublisher, *nats.Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if log == nil {
		log = logger.Global()
	}

	opts := []nats.Option{
		nats.Name("hostsync"),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var js jetstream.JetStream

	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := EnsureStream(ctx, js, cfg.Stream); err != nil {
		nc.Close()
		return nil, nil, err
	}

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Str("stream", cfg.Stream).
		Msg("Connected host event publisher")

	return NewHostEventPublisher(js, cfg.Stream, log), nc, nil
}
