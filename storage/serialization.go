// Copyright 2025 RnD Map contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// Summary records and text entries are stored in MUS format. MUS is
// positional: the field order in the serializers below is part of the stored
// format and must not change without a snapshot reset.
//
// Details are stored as JSON instead. The detail payload is deep and follows
// the upstream export, which adds and drops fields between revisions; a
// positional codec would reject such records where the JSON decoder shrugs
// them off.

type keywordSer struct{}

// KeywordMUS serializes core.Keyword values.
var KeywordMUS = keywordSer{}

func (keywordSer) Size(k core.Keyword) (size int) {
	return ord.String.Size(k.Keyword) + varint.Int.Size(k.Count)
}

func (keywordSer) Marshal(k core.Keyword, bs []byte) (n int) {
	n = ord.String.Marshal(k.Keyword, bs)
	n += varint.Int.Marshal(k.Count, bs[n:])
	return n
}

func (keywordSer) Unmarshal(bs []byte) (k core.Keyword, n int, err error) {
	k.Keyword, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return k, n, err
	}
	var cn int
	k.Count, cn, err = varint.Int.Unmarshal(bs[n:])
	n += cn
	return k, n, err
}

type rubricSer struct{}

// RubricMUS serializes core.Rubric values.
var RubricMUS = rubricSer{}

func (rubricSer) Size(r core.Rubric) (size int) {
	return ord.String.Size(r.Code) + ord.String.Size(r.Name)
}

func (rubricSer) Marshal(r core.Rubric, bs []byte) (n int) {
	n = ord.String.Marshal(r.Code, bs)
	n += ord.String.Marshal(r.Name, bs[n:])
	return n
}

func (rubricSer) Unmarshal(bs []byte) (r core.Rubric, n int, err error) {
	r.Code, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	var nn int
	r.Name, nn, err = ord.String.Unmarshal(bs[n:])
	n += nn
	return r, n, err
}

type organizationSer struct{}

// OrganizationMUS serializes core.Organization summary records.
var OrganizationMUS = organizationSer{}

func (organizationSer) Size(o core.Organization) (size int) {
	size = ord.String.Size(o.OGRN) +
		ord.String.Size(o.Name) +
		ord.String.Size(o.ShortName) +
		ord.String.Size(o.Supervisor) +
		ord.String.Size(o.OrgType) +
		ord.String.Size(o.OKOGU) +
		ord.String.Size(o.OKOPF) +
		varint.Int.Size(o.RIDCount) +
		varint.Int.Size(o.ProjectCount)
	size += varint.Int.Size(len(o.RIDTypes))
	for k, v := range o.RIDTypes {
		size += ord.String.Size(k) + varint.Int.Size(v)
	}
	size += varint.Int.Size(len(o.TopKeywords))
	for _, k := range o.TopKeywords {
		size += KeywordMUS.Size(k)
	}
	size += varint.Int.Size(len(o.Rubrics))
	for _, r := range o.Rubrics {
		size += RubricMUS.Size(r)
	}
	size += varint.Int.Size(len(o.ScientificDomains))
	for _, r := range o.ScientificDomains {
		size += RubricMUS.Size(r)
	}
	size += sizeFloatPtr(o.Lat) + sizeFloatPtr(o.Lon)
	size += varint.Float64.Size(o.TotalFunding)
	return size
}

func (organizationSer) Marshal(o core.Organization, bs []byte) (n int) {
	n = ord.String.Marshal(o.OGRN, bs)
	n += ord.String.Marshal(o.Name, bs[n:])
	n += ord.String.Marshal(o.ShortName, bs[n:])
	n += ord.String.Marshal(o.Supervisor, bs[n:])
	n += ord.String.Marshal(o.OrgType, bs[n:])
	n += ord.String.Marshal(o.OKOGU, bs[n:])
	n += ord.String.Marshal(o.OKOPF, bs[n:])
	n += varint.Int.Marshal(o.RIDCount, bs[n:])
	n += varint.Int.Marshal(o.ProjectCount, bs[n:])
	n += varint.Int.Marshal(len(o.RIDTypes), bs[n:])
	for k, v := range o.RIDTypes {
		n += ord.String.Marshal(k, bs[n:])
		n += varint.Int.Marshal(v, bs[n:])
	}
	n += varint.Int.Marshal(len(o.TopKeywords), bs[n:])
	for _, k := range o.TopKeywords {
		n += KeywordMUS.Marshal(k, bs[n:])
	}
	n += varint.Int.Marshal(len(o.Rubrics), bs[n:])
	for _, r := range o.Rubrics {
		n += RubricMUS.Marshal(r, bs[n:])
	}
	n += varint.Int.Marshal(len(o.ScientificDomains), bs[n:])
	for _, r := range o.ScientificDomains {
		n += RubricMUS.Marshal(r, bs[n:])
	}
	n += marshalFloatPtr(o.Lat, bs[n:])
	n += marshalFloatPtr(o.Lon, bs[n:])
	n += varint.Float64.Marshal(o.TotalFunding, bs[n:])
	return n
}

func (organizationSer) Unmarshal(bs []byte) (o core.Organization, n int, err error) {
	var nn int
	read := func(dst *string) bool {
		if err != nil {
			return false
		}
		*dst, nn, err = ord.String.Unmarshal(bs[n:])
		n += nn
		return err == nil
	}
	readInt := func(dst *int) bool {
		if err != nil {
			return false
		}
		*dst, nn, err = varint.Int.Unmarshal(bs[n:])
		n += nn
		return err == nil
	}

	read(&o.OGRN)
	read(&o.Name)
	read(&o.ShortName)
	read(&o.Supervisor)
	read(&o.OrgType)
	read(&o.OKOGU)
	read(&o.OKOPF)
	readInt(&o.RIDCount)
	readInt(&o.ProjectCount)
	if err != nil {
		return o, n, err
	}

	var length int
	if !readInt(&length) {
		return o, n, err
	}
	if length < 0 {
		return o, n, fmt.Errorf("%w: negative rid type count", ErrSerializationFailed)
	}
	if length > 0 {
		o.RIDTypes = make(map[string]int, length)
		for i := 0; i < length; i++ {
			var k string
			var v int
			if !read(&k) || !readInt(&v) {
				return o, n, err
			}
			o.RIDTypes[k] = v
		}
	}

	if !readInt(&length) {
		return o, n, err
	}
	if length < 0 {
		return o, n, fmt.Errorf("%w: negative keyword count", ErrSerializationFailed)
	}
	for i := 0; i < length; i++ {
		var k core.Keyword
		k, nn, err = KeywordMUS.Unmarshal(bs[n:])
		n += nn
		if err != nil {
			return o, n, err
		}
		o.TopKeywords = append(o.TopKeywords, k)
	}

	for _, dst := range []*[]core.Rubric{&o.Rubrics, &o.ScientificDomains} {
		if !readInt(&length) {
			return o, n, err
		}
		if length < 0 {
			return o, n, fmt.Errorf("%w: negative rubric count", ErrSerializationFailed)
		}
		for i := 0; i < length; i++ {
			var r core.Rubric
			r, nn, err = RubricMUS.Unmarshal(bs[n:])
			n += nn
			if err != nil {
				return o, n, err
			}
			*dst = append(*dst, r)
		}
	}

	o.Lat, nn, err = unmarshalFloatPtr(bs[n:])
	n += nn
	if err != nil {
		return o, n, err
	}
	o.Lon, nn, err = unmarshalFloatPtr(bs[n:])
	n += nn
	if err != nil {
		return o, n, err
	}
	o.TotalFunding, nn, err = varint.Float64.Unmarshal(bs[n:])
	n += nn
	return o, n, err
}

type textEntrySer struct{}

// TextEntryMUS serializes core.TextEntry values.
var TextEntryMUS = textEntrySer{}

func (textEntrySer) Size(e core.TextEntry) (size int) {
	return sizeStringSlice(e.Projects) + sizeStringSlice(e.RIDs)
}

func (textEntrySer) Marshal(e core.TextEntry, bs []byte) (n int) {
	n = marshalStringSlice(e.Projects, bs)
	n += marshalStringSlice(e.RIDs, bs[n:])
	return n
}

func (textEntrySer) Unmarshal(bs []byte) (e core.TextEntry, n int, err error) {
	e.Projects, n, err = unmarshalStringSlice(bs)
	if err != nil {
		return e, n, err
	}
	var nn int
	e.RIDs, nn, err = unmarshalStringSlice(bs[n:])
	n += nn
	return e, n, err
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("%w: negative slice length", ErrSerializationFailed)
	}
	for i := 0; i < length; i++ {
		s, nn, serr := ord.String.Unmarshal(bs[n:])
		n += nn
		if serr != nil {
			return nil, n, serr
		}
		v = append(v, s)
	}
	return v, n, nil
}

func sizeFloatPtr(v *float64) (size int) {
	if v == nil {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Float64.Size(*v)
}

func marshalFloatPtr(v *float64, bs []byte) (n int) {
	if v == nil {
		return ord.Bool.Marshal(false, bs)
	}
	n = ord.Bool.Marshal(true, bs)
	n += varint.Float64.Marshal(*v, bs[n:])
	return n
}

func unmarshalFloatPtr(bs []byte) (v *float64, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	f, nn, err := varint.Float64.Unmarshal(bs[n:])
	n += nn
	if err != nil {
		return nil, n, err
	}
	return &f, n, nil
}

// MarshalOrganization serializes an Organization to bytes.
func MarshalOrganization(org *core.Organization) []byte {
	buf := make([]byte, OrganizationMUS.Size(*org))
	OrganizationMUS.Marshal(*org, buf)
	return buf
}

// UnmarshalOrganization deserializes an Organization from bytes.
func UnmarshalOrganization(data []byte) (*core.Organization, error) {
	org, _, err := OrganizationMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// MarshalTextEntry serializes a TextEntry to bytes.
func MarshalTextEntry(entry *core.TextEntry) []byte {
	buf := make([]byte, TextEntryMUS.Size(*entry))
	TextEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalTextEntry deserializes a TextEntry from bytes.
func UnmarshalTextEntry(data []byte) (*core.TextEntry, error) {
	entry, _, err := TextEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalDetail serializes an OrganizationDetail to JSON bytes.
func MarshalDetail(detail *core.OrganizationDetail) ([]byte, error) {
	return json.Marshal(detail)
}

// UnmarshalDetail deserializes an OrganizationDetail from JSON bytes.
func UnmarshalDetail(data []byte) (*core.OrganizationDetail, error) {
	var detail core.OrganizationDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// MarshalOGRNList serializes the dataset-order OGRN list to bytes.
func MarshalOGRNList(ogrns []string) []byte {
	buf := make([]byte, sizeStringSlice(ogrns))
	marshalStringSlice(ogrns, buf)
	return buf
}

// UnmarshalOGRNList deserializes the dataset-order OGRN list from bytes.
func UnmarshalOGRNList(data []byte) ([]string, error) {
	ogrns, _, err := unmarshalStringSlice(data)
	return ogrns, err
}

// MarshalSnapshot serializes a snapshot digest to bytes.
func MarshalSnapshot(digest uint64) []byte {
	buf := make([]byte, varint.Uint64.Size(digest))
	varint.Uint64.Marshal(digest, buf)
	return buf
}

// UnmarshalSnapshot deserializes a snapshot digest from bytes.
func UnmarshalSnapshot(data []byte) (uint64, error) {
	digest, _, err := varint.Uint64.Unmarshal(data)
	return digest, err
}
