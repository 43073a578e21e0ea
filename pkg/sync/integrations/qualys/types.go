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

package qualys

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// List is the {"list": [...]} envelope Qualys wraps every collection in.
type List[T any] struct {
	List []T `json:"list"`
}

// Host is a Qualys host asset as returned by the host API.
type Host struct {
	ID            json.Number `json:"id,omitempty"`
	Name          *string     `json:"name"`
	DNSHostName   *string     `json:"dnsHostName"`
	FQDN          *string     `json:"fqdn"`
	Address       *string     `json:"address"`
	OS            *string     `json:"os"`
	CloudProvider *string     `json:"cloudProvider"`
	Created       *Date       `json:"created"`
	Modified      *Date       `json:"modified"`

	AgentInfo        *AgentInfo                     `json:"agentInfo"`
	SourceInfo       List[SourceInfo]               `json:"sourceInfo"`
	NetworkInterface List[NetworkInterfaceEnvelope] `json:"networkInterface"`
	Processor        List[ProcessorEnvelope]        `json:"processor"`
	Tags             List[TagEnvelope]              `json:"tags"`
}

// AgentInfo describes the Qualys cloud agent installed on the host.
type AgentInfo struct {
	AgentID       *string `json:"agentId"`
	AgentVersion  *string `json:"agentVersion"`
	Platform      *string `json:"platform"`
	Status        *string `json:"status"`
	LastCheckedIn *Date   `json:"lastCheckedIn"`
}

type SourceInfo struct {
	EC2 *EC2AssetSource `json:"Ec2AssetSourceSimple"`
}

type EC2AssetSource struct {
	InstanceID       *string `json:"instanceId"`
	InstanceType     *string `json:"instanceType"`
	Region           *string `json:"region"`
	AvailabilityZone *string `json:"availabilityZone"`
	PrivateIPAddress *string `json:"privateIpAddress"`
	PublicIPAddress  *string `json:"publicIpAddress"`
	AccountID        *string `json:"accountId"`
}

type NetworkInterfaceEnvelope struct {
	Interface *NetworkInterface `json:"HostAssetInterface"`
}

type NetworkInterface struct {
	InterfaceName *string `json:"interfaceName"`
	MACAddress    *string `json:"macAddress"`
	Address       *string `json:"address"`
}

type ProcessorEnvelope struct {
	Processor *Processor `json:"HostAssetProcessor"`
}

type Processor struct {
	Name  *string `json:"name"`
	Speed *int    `json:"speed"`
}

type TagEnvelope struct {
	Tag *Tag `json:"TagSimple"`
}

type Tag struct {
	ID   json.Number `json:"id,omitempty"`
	Name *string     `json:"name"`
}

// Date is a timestamp in any of the shapes the API emits: a plain string,
// epoch seconds, or MongoDB extended JSON ({"$date": ...} where the inner
// value is a string or {"$numberLong": "<epoch millis>"}).
//
// Value holds a string or float64 epoch seconds, ready for dates.ToInstant.
type Date struct {
	Value any
}

func (d *Date) UnmarshalJSON(b []byte) error {
	v, err := decodeDate(b)
	if err != nil {
		return err
	}

	d.Value = v

	return nil
}

func decodeDate(b []byte) (any, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}

		return s, nil
	case '{':
		var ext struct {
			Date       json.RawMessage `json:"$date"`
			NumberLong *string         `json:"$numberLong"`
		}

		if err := json.Unmarshal(b, &ext); err != nil {
			return nil, err
		}

		if ext.NumberLong != nil {
			ms, err := strconv.ParseInt(*ext.NumberLong, 10, 64)
			if err != nil {
				return nil, err
			}

			return float64(ms) / 1000, nil
		}

		if ext.Date == nil {
			return nil, nil
		}

		inner, err := decodeDate(ext.Date)
		if err != nil {
			return nil, err
		}

		// A bare number inside $date is epoch millis.
		if n, ok := inner.(json.Number); ok {
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}

			return f / 1000, nil
		}

		return inner, nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			// Booleans and arrays carry no date.
			return nil, nil
		}

		return n, nil
	}
}
