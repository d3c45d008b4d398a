/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package tuid

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Namespace of name-based identifiers derived from time-based ones
var Namespace = uuid.MustParse("df3deac8-092e-527c-8b1b-2d46f52ff852")

// Transform derives new identifier from the time-based one
type Transform func(uuid.UUID) (uuid.UUID, error)

// ToV3 hashes Namespace and the identifier with md5 into version 3 identifier.
// It hides the node and time of the source but keeps its uniqueness.
func ToV3(uid uuid.UUID) (uuid.UUID, error) {
	if !IsTimeBased(uid) {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNotTimeBased, uid)
	}
	return uuid.NewMD5(Namespace, uid[:]), nil
}

// ToV5 hashes Namespace and the identifier with sha1 into version 5 identifier.
func ToV5(uid uuid.UUID) (uuid.UUID, error) {
	if !IsTimeBased(uid) {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNotTimeBased, uid)
	}
	return uuid.NewSHA1(Namespace, uid[:]), nil
}

type derived struct {
	source    Source
	transform Transform
}

// Derived applies the transform to every identifier of the source
func Derived(source Source, transform Transform) Source {
	return derived{source: source, transform: transform}
}

func (d derived) Next(ctx context.Context) (uuid.UUID, error) {
	uid, err := d.source.Next(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return d.transform(uid)
}

func (d derived) NextBatch(ctx context.Context, n int) ([]uuid.UUID, error) {
	seq, err := d.source.NextBatch(ctx, n)
	if err != nil {
		return nil, err
	}

	for i, uid := range seq {
		if seq[i], err = d.transform(uid); err != nil {
			return nil, err
		}
	}
	return seq, nil
}
