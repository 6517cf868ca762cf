// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Physics is a physics component that makes the engine simulate an asset.
// It is one of [*RigidBodyComponent] or [*ArticulatedBodyComponent].
type Physics interface {

	// PhysicsKind returns the kind name used in saved documents.
	PhysicsKind() string
}

// RigidBodyConstraints freeze one degree of freedom of a rigid body.
type RigidBodyConstraints string

const (
	FreezePositionX RigidBodyConstraints = "freeze_position_x"
	FreezePositionY RigidBodyConstraints = "freeze_position_y"
	FreezePositionZ RigidBodyConstraints = "freeze_position_z"
	FreezeRotationX RigidBodyConstraints = "freeze_rotation_x"
	FreezeRotationY RigidBodyConstraints = "freeze_rotation_y"
	FreezeRotationZ RigidBodyConstraints = "freeze_rotation_z"
)

// RigidBodyComponent makes an asset a free rigid body.
type RigidBodyComponent struct {

	// Mass is the mass in kilograms.
	Mass float32 `json:"mass"`

	// Drag is the linear drag coefficient.
	Drag float32 `json:"drag"`

	// AngularDrag is the angular drag coefficient.
	AngularDrag float32 `json:"angular_drag"`

	// UseGravity is whether gravity acts on the body.
	UseGravity bool `json:"use_gravity"`

	// Kinematic is whether the body is moved only by commands, not by forces.
	Kinematic bool `json:"kinematic"`

	// Constraints are the frozen degrees of freedom.
	Constraints []RigidBodyConstraints `json:"constraints,omitempty"`
}

// NewRigidBodyComponent returns a new [RigidBodyComponent] of unit mass
// subject to gravity.
func NewRigidBodyComponent() *RigidBodyComponent {
	return &RigidBodyComponent{Mass: 1, AngularDrag: 0.05, UseGravity: true}
}

func (rb *RigidBodyComponent) PhysicsKind() string { return "rigid_body" }

// JointKinds are the kinds of joint connecting an articulated body to its parent.
type JointKinds string

const (
	JointFixed     JointKinds = "fixed"
	JointPrismatic JointKinds = "prismatic"
	JointRevolute  JointKinds = "revolute"
	JointSpherical JointKinds = "spherical"
)

// Validate returns an error if the joint kind is unknown.
func (j JointKinds) Validate() error {
	switch j {
	case JointFixed, JointPrismatic, JointRevolute, JointSpherical:
		return nil
	}
	return fmt.Errorf("assets: unknown joint kind %q", string(j))
}

// ArticulatedBodyComponent makes an asset a link of an articulation,
// joined to its parent asset by a joint.
type ArticulatedBodyComponent struct {

	// JointKind is the kind of joint to the parent.
	JointKind JointKinds `json:"joint_type"`

	// AnchorPosition is the position of the joint in the local frame.
	AnchorPosition [3]float32 `json:"anchor_position"`

	// AnchorRotation is the rotation of the joint in the local frame.
	AnchorRotation [4]float32 `json:"anchor_rotation"`

	// ImmovableBase is whether the root of the articulation is fixed.
	ImmovableBase bool `json:"immovable_base,omitempty"`

	// Mass is the mass of the link in kilograms.
	Mass float32 `json:"mass"`

	// UseGravity is whether gravity acts on the link.
	UseGravity bool `json:"use_gravity"`

	LinearDamping  float32 `json:"linear_damping"`
	AngularDamping float32 `json:"angular_damping"`
	JointFriction  float32 `json:"joint_friction"`

	DriveStiffness      float32 `json:"drive_stiffness"`
	DriveDamping        float32 `json:"drive_damping"`
	DriveForceLimit     float32 `json:"drive_force_limit"`
	DriveTarget         float32 `json:"drive_target"`
	DriveTargetVelocity float32 `json:"drive_target_velocity"`

	// UpperLimit and LowerLimit bound the joint motion; equal values mean no limit.
	UpperLimit float32 `json:"upper_limit"`
	LowerLimit float32 `json:"lower_limit"`
}

// NewArticulatedBodyComponent returns a new [ArticulatedBodyComponent]
// with the given joint kind.
func NewArticulatedBodyComponent(kind JointKinds) (*ArticulatedBodyComponent, error) {
	ab := &ArticulatedBodyComponent{JointKind: kind, AnchorRotation: [4]float32{0, 0, 0, 1},
		Mass: 1, UseGravity: true, LinearDamping: 0.05, AngularDamping: 0.05, DriveForceLimit: 3.4e38}
	return ab, kind.Validate()
}

func (ab *ArticulatedBodyComponent) PhysicsKind() string { return "articulated_body" }

func clonePhysics(p Physics) Physics {
	switch p := p.(type) {
	case *RigidBodyComponent:
		c := *p
		c.Constraints = slices.Clone(p.Constraints)
		return &c
	case *ArticulatedBodyComponent:
		c := *p
		return &c
	}
	return p
}

// encodePhysics returns the JSON object of the component with an added kind.
func encodePhysics(p Physics) (json.RawMessage, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["kind"] = p.PhysicsKind()
	return json.Marshal(m)
}

func decodePhysics(b json.RawMessage) (Physics, error) {
	var k struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(b, &k); err != nil {
		return nil, err
	}
	var p Physics
	switch k.Kind {
	case "rigid_body":
		p = &RigidBodyComponent{}
	case "articulated_body":
		p = &ArticulatedBodyComponent{}
	default:
		return nil, fmt.Errorf("assets: unknown physics component kind %q", k.Kind)
	}
	if err := json.Unmarshal(b, p); err != nil {
		return nil, err
	}
	if ab, ok := p.(*ArticulatedBodyComponent); ok {
		return p, ab.JointKind.Validate()
	}
	return p, nil
}

// ColliderKinds are the shapes of colliders.
type ColliderKinds string

const (
	ColliderBox     ColliderKinds = "box"
	ColliderSphere  ColliderKinds = "sphere"
	ColliderCapsule ColliderKinds = "capsule"
	ColliderMesh    ColliderKinds = "mesh"
)

// Collider is the collision shape of an asset.
type Collider struct {

	// Kind is the shape.
	Kind ColliderKinds `json:"type"`

	// BoundingBox is the size of the shape along each axis.
	BoundingBox [3]float32 `json:"bounding_box"`

	// Offset is the center of the shape in the local frame.
	Offset [3]float32 `json:"offset"`

	// Intangible is whether the collider only reports contacts
	// without a collision response.
	Intangible bool `json:"intangible,omitempty"`
}
