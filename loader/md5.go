package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/scengine/scengine/anim"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/resource"
)

// MD5Mesh is one mesh record of an md5mesh file, sharing the file's base
// skeleton.
type MD5Mesh struct {
	Shader    string
	NumVerts  int
	TexCoords []float32
	Vertices  []anim.VertexWeights
	Weights   []anim.Weight
	Indices   []uint32
}

// MD5Model is the md5mesh payload: the base skeleton in absolute form
// plus the meshes.
type MD5Model struct {
	Skeleton *anim.Skeleton
	Meshes   []*MD5Mesh
}

// MD5Anim is the md5anim payload: per-frame key skeletons, already made
// absolute, and the playback rate.
type MD5Anim struct {
	Keys      []*anim.Skeleton
	FrameRate float32
}

// ReadMD5Mesh parses an md5mesh stream.
func ReadMD5Mesh(r io.Reader) (*MD5Model, error) {
	sc := bufio.NewScanner(r)
	model := &MD5Model{Skeleton: anim.NewSkeleton()}
	var joints []anim.Joint

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "joints {"):
			for sc.Scan() {
				jl := strings.TrimSpace(sc.Text())
				if strings.HasPrefix(jl, "}") {
					break
				}
				j, err := parseMD5Joint(jl)
				if err != nil {
					return nil, err
				}
				joints = append(joints, j)
			}
		case strings.HasPrefix(line, "mesh {"):
			mesh, err := parseMD5MeshBlock(sc)
			if err != nil {
				return nil, err
			}
			model.Meshes = append(model.Meshes, mesh)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(joints) == 0 || len(model.Meshes) == 0 {
		return nil, fmt.Errorf("md5mesh without joints or meshes: %w", core.ErrBadFormat)
	}
	model.Skeleton.SetJoints(joints)
	return model, nil
}

// joint lines: "name" parent ( px py pz ) ( qx qy qz )
func parseMD5Joint(line string) (anim.Joint, error) {
	j := anim.NewJoint()
	clean := strings.NewReplacer("(", " ", ")", " ").Replace(line)
	// strip the quoted name
	end := strings.LastIndex(clean, "\"")
	if end < 0 {
		return j, fmt.Errorf("md5 joint %q: %w", line, core.ErrBadFormat)
	}
	var px, py, pz, qx, qy, qz float32
	n, err := fmt.Sscanf(clean[end+1:], "%d %f %f %f %f %f %f",
		&j.Parent, &px, &py, &pz, &qx, &qy, &qz)
	if err != nil || n != 7 {
		return j, fmt.Errorf("md5 joint %q: %w", line, core.ErrBadFormat)
	}
	j.Position = mgl32.Vec3{px, py, pz}
	j.Orientation = anim.ComputeW(mgl32.Vec3{qx, qy, qz})
	return j, nil
}

func parseMD5MeshBlock(sc *bufio.Scanner) (*MD5Mesh, error) {
	mesh := &MD5Mesh{}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		clean := strings.NewReplacer("(", " ", ")", " ").Replace(line)
		switch {
		case strings.HasPrefix(line, "}"):
			return mesh, nil
		case strings.HasPrefix(line, "shader "):
			mesh.Shader = strings.Trim(strings.TrimPrefix(line, "shader "), "\" ")
		case strings.HasPrefix(line, "numverts "):
			var n int
			if _, err := fmt.Sscanf(line, "numverts %d", &n); err != nil || n < 0 {
				return nil, fmt.Errorf("md5 numverts: %w", core.ErrBadFormat)
			}
			mesh.NumVerts = n
			mesh.Vertices = make([]anim.VertexWeights, n)
			mesh.TexCoords = make([]float32, n*2)
		case strings.HasPrefix(line, "vert "):
			var i int
			var u, v float32
			var first, count int
			if _, err := fmt.Sscanf(clean, "vert %d %f %f %d %d",
				&i, &u, &v, &first, &count); err != nil {
				return nil, fmt.Errorf("md5 vert %q: %w", line, core.ErrBadFormat)
			}
			if i < 0 || i >= len(mesh.Vertices) {
				return nil, fmt.Errorf("md5 vert index %d: %w", i, core.ErrBadFormat)
			}
			mesh.TexCoords[i*2] = u
			mesh.TexCoords[i*2+1] = v
			mesh.Vertices[i] = anim.VertexWeights{First: first, Count: count}
		case strings.HasPrefix(line, "tri "):
			var i int
			var a, b, c uint32
			if _, err := fmt.Sscanf(line, "tri %d %d %d %d", &i, &a, &b, &c); err != nil {
				return nil, fmt.Errorf("md5 tri %q: %w", line, core.ErrBadFormat)
			}
			mesh.Indices = append(mesh.Indices, a, b, c)
		case strings.HasPrefix(line, "weight "):
			var i, joint int
			var bias, x, y, z float32
			if _, err := fmt.Sscanf(clean, "weight %d %d %f %f %f %f",
				&i, &joint, &bias, &x, &y, &z); err != nil {
				return nil, fmt.Errorf("md5 weight %q: %w", line, core.ErrBadFormat)
			}
			mesh.Weights = append(mesh.Weights, anim.Weight{
				Joint:    joint,
				Weight:   bias,
				Position: mgl32.Vec3{x, y, z},
			})
		}
	}
	return nil, fmt.Errorf("md5 mesh block not closed: %w", core.ErrBadFormat)
}

type md5JointInfo struct {
	parent int
	flags  int
	start  int
}

// ReadMD5Anim parses an md5anim stream into pose-ready key skeletons: the
// baseframe overlaid with each frame's animated components, then made
// absolute through the hierarchy.
func ReadMD5Anim(r io.Reader) (*MD5Anim, error) {
	sc := bufio.NewScanner(r)
	out := &MD5Anim{FrameRate: 24}

	var infos []md5JointInfo
	var base []anim.Joint
	var numComponents int

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "frameRate "):
			if _, err := fmt.Sscanf(line, "frameRate %f", &out.FrameRate); err != nil {
				return nil, fmt.Errorf("md5 frameRate: %w", core.ErrBadFormat)
			}
		case strings.HasPrefix(line, "numAnimatedComponents "):
			fmt.Sscanf(line, "numAnimatedComponents %d", &numComponents)
		case strings.HasPrefix(line, "hierarchy {"):
			for sc.Scan() {
				hl := strings.TrimSpace(sc.Text())
				if strings.HasPrefix(hl, "}") {
					break
				}
				end := strings.LastIndex(hl, "\"")
				var info md5JointInfo
				if end < 0 {
					return nil, fmt.Errorf("md5 hierarchy %q: %w", hl, core.ErrBadFormat)
				}
				if _, err := fmt.Sscanf(hl[end+1:], "%d %d %d",
					&info.parent, &info.flags, &info.start); err != nil {
					return nil, fmt.Errorf("md5 hierarchy %q: %w", hl, core.ErrBadFormat)
				}
				infos = append(infos, info)
			}
		case strings.HasPrefix(line, "baseframe {"):
			for sc.Scan() {
				bl := strings.TrimSpace(sc.Text())
				if strings.HasPrefix(bl, "}") {
					break
				}
				clean := strings.NewReplacer("(", " ", ")", " ").Replace(bl)
				var px, py, pz, qx, qy, qz float32
				if _, err := fmt.Sscanf(clean, "%f %f %f %f %f %f",
					&px, &py, &pz, &qx, &qy, &qz); err != nil {
					return nil, fmt.Errorf("md5 baseframe %q: %w", bl, core.ErrBadFormat)
				}
				j := anim.NewJoint()
				j.Position = mgl32.Vec3{px, py, pz}
				j.Orientation = anim.ComputeW(mgl32.Vec3{qx, qy, qz})
				base = append(base, j)
			}
		case strings.HasPrefix(line, "frame "):
			if len(infos) != len(base) || len(base) == 0 {
				return nil, fmt.Errorf("md5 frame before hierarchy/baseframe: %w", core.ErrBadFormat)
			}
			data, err := readMD5FrameData(sc, numComponents)
			if err != nil {
				return nil, err
			}
			key, err := buildMD5Key(infos, base, data)
			if err != nil {
				return nil, err
			}
			out.Keys = append(out.Keys, key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out.Keys) == 0 {
		return nil, fmt.Errorf("md5anim without frames: %w", core.ErrBadFormat)
	}
	return out, nil
}

func readMD5FrameData(sc *bufio.Scanner, n int) ([]float32, error) {
	data := make([]float32, 0, n)
	for len(data) < n && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "}") {
			break
		}
		for _, f := range strings.Fields(line) {
			var v float32
			if _, err := fmt.Sscanf(f, "%f", &v); err != nil {
				return nil, fmt.Errorf("md5 frame value %q: %w", f, core.ErrBadFormat)
			}
			data = append(data, v)
		}
	}
	if len(data) < n {
		return nil, fmt.Errorf("md5 frame truncated (%d of %d values): %w",
			len(data), n, core.ErrBadFormat)
	}
	return data, nil
}

// buildMD5Key overlays one frame's animated components on the baseframe
// along the per-joint bitmask, then makes the pose absolute.
func buildMD5Key(infos []md5JointInfo, base []anim.Joint, data []float32) (*anim.Skeleton, error) {
	joints := make([]anim.Joint, len(base))
	copy(joints, base)
	for i := range joints {
		info := infos[i]
		joints[i].Parent = info.parent
		k := info.start
		pos := joints[i].Position
		q := joints[i].Orientation.V
		for bit, dst := range []*float32{&pos[0], &pos[1], &pos[2], &q[0], &q[1], &q[2]} {
			if info.flags&(1<<bit) == 0 {
				continue
			}
			if k >= len(data) {
				return nil, fmt.Errorf("md5 frame component %d out of range: %w", k, core.ErrBadFormat)
			}
			*dst = data[k]
			k++
		}
		joints[i].Position = pos
		joints[i].Orientation = anim.ComputeW(q)
	}
	key := anim.NewSkeleton()
	key.SetJoints(joints)
	key.ComputeAbsoluteJoints()
	return key, nil
}

// RegisterMD5Loaders wires both text formats into a media registry.
func RegisterMD5Loaders(m *resource.Media) {
	m.Register(resource.TypeSkeleton, 0, ".md5mesh", func(r io.Reader, name string) (any, error) {
		return ReadMD5Mesh(r)
	})
	m.Register(resource.TypeAnimation, 0, ".md5anim", func(r io.Reader, name string) (any, error) {
		return ReadMD5Anim(r)
	})
}
