package gpu

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gettingback"
	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/texture"
	"github.com/google/uuid"
)

var ErrWrongTarget = errors.New("gpu: frame was not encoded for WGSL")

// MeshBuffers holds one uploaded mesh.
type MeshBuffers struct {
	Vertex     *wgpu.Buffer
	Index      *wgpu.Buffer
	IndexCount uint32
}

func (b *MeshBuffers) release() {
	b.Vertex.Release()
	b.Index.Release()
}

// nodeResources are the per-node uniform buffers and bind groups. Each node has
// its own buffers since every queue write lands before the frame is submitted.
type nodeResources struct {
	uniforms *wgpu.Buffer
	fragment *wgpu.Buffer
	material *wgpu.Buffer
	buffers  *wgpu.BindGroup

	// paths are the texture files the group was built from.
	paths    map[rev2.Textures]string
	textures [rev2.TextureCount]*wgpu.Texture
	views    [rev2.TextureCount]*wgpu.TextureView
	texGroup *wgpu.BindGroup
}

func (r *nodeResources) releaseTextures() {
	if r.texGroup != nil {
		r.texGroup.Release()
		r.texGroup = nil
	}
	for i := range r.views {
		if r.views[i] != nil {
			r.views[i].Release()
			r.views[i] = nil
		}
		if r.textures[i] != nil {
			r.textures[i].Release()
			r.textures[i] = nil
		}
	}
	r.paths = nil
}

// release tolerates a partially built node.
func (r *nodeResources) release() {
	if r.buffers != nil {
		r.buffers.Release()
	}
	r.releaseTextures()
	for _, b := range []*wgpu.Buffer{r.uniforms, r.fragment, r.material} {
		if b != nil {
			b.Release()
		}
	}
}

// PreparedDraw pairs a frame draw with its uploaded resources.
type PreparedDraw struct {
	Mesh     *MeshBuffers
	Buffers  *wgpu.BindGroup
	Textures *wgpu.BindGroup
}

// Manager owns every GPU resource bound through the revision 2 registry.
type Manager struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	sizes   map[string]uint64
	layouts map[uint32]*wgpu.BindGroupLayout

	LightsBuf    *wgpu.Buffer
	Sampler      *wgpu.Sampler
	SamplerGroup *wgpu.BindGroup

	// MaxTextureExtent bounds texture files loaded for nodes.
	MaxTextureExtent int

	meshes map[*mesh.Mesh]*MeshBuffers
	nodes  map[uuid.UUID]*nodeResources
	log    gettingback.Logger
}

func NewManager(device *wgpu.Device, log gettingback.Logger) (*Manager, error) {
	if log == nil {
		log = gettingback.NewNopLogger()
	}
	m := &Manager{
		Device:           device,
		Queue:            device.GetQueue(),
		sizes:            UniformSizes(layout.WGSL),
		layouts:          map[uint32]*wgpu.BindGroupLayout{},
		MaxTextureExtent: texture.DefaultMaxExtent,
		meshes:           map[*mesh.Mesh]*MeshBuffers{},
		nodes:            map[uuid.UUID]*nodeResources{},
		log:              log,
	}

	entries, err := BindGroupLayoutEntries(rev2.Registry(), m.sizes)
	if err != nil {
		return nil, err
	}
	for group, e := range entries {
		bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("group %d", group),
			Entries: e,
		})
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("failed to create bind group layout %d: %w", group, err)
		}
		m.layouts[group] = bgl
	}

	if m.LightsBuf, err = m.uniformBuffer("lights"); err != nil {
		m.Release()
		return nil, err
	}

	m.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}
	m.SamplerGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "sampler",
		Layout: m.layouts[rev2.GroupSamplers],
		Entries: []wgpu.BindGroupEntry{{
			Binding: rev2.SamplerIndexDefault,
			Sampler: m.Sampler,
		}},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to create sampler bind group: %w", err)
	}
	return m, nil
}

// BindGroupLayouts returns the layouts in group order for the pipeline layout.
func (m *Manager) BindGroupLayouts() []*wgpu.BindGroupLayout {
	groups := make([]uint32, 0, len(m.layouts))
	for g := range m.layouts {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	out := make([]*wgpu.BindGroupLayout, len(groups))
	for i, g := range groups {
		out[i] = m.layouts[g]
	}
	return out
}

func (m *Manager) uniformBuffer(shaderName string) (*wgpu.Buffer, error) {
	buf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: shaderName,
		Size:  m.sizes[shaderName],
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer: %w", shaderName, err)
	}
	return buf, nil
}

// UploadMesh creates the vertex and index buffers of msh once and reuses them
// for later calls.
func (m *Manager) UploadMesh(msh *mesh.Mesh) (*MeshBuffers, error) {
	if b, ok := m.meshes[msh]; ok {
		return b, nil
	}
	vb, err := m.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    msh.Shape.String() + " vertices",
		Contents: msh.VertexBytes(),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s vertices: %w", msh.Shape, err)
	}
	ib, err := m.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    msh.Shape.String() + " indices",
		Contents: msh.IndexBytes(),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("failed to upload %s indices: %w", msh.Shape, err)
	}
	b := &MeshBuffers{Vertex: vb, Index: ib, IndexCount: uint32(len(msh.Indices))}
	m.meshes[msh] = b
	return b, nil
}

// UploadTexture copies img into a new RGBA8 texture.
func (m *Manager) UploadTexture(label string, img *texture.Image) (*wgpu.Texture, *wgpu.TextureView, error) {
	extent := wgpu.Extent3D{Width: img.Width, Height: img.Height, DepthOrArrayLayers: 1}
	tex, err := m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create texture %s: %w", label, err)
	}
	m.Queue.WriteTexture(tex.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  img.BytesPerRow(),
		RowsPerImage: img.Height,
	}, &extent)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create view for %s: %w", label, err)
	}
	return tex, view, nil
}

// texturesChanged reports whether a node's texture files differ from the ones
// its group was built from.
func texturesChanged(built, current map[rev2.Textures]string) bool {
	return !maps.Equal(built, current)
}

// sweep releases and drops every cached entry the frame did not use.
func sweep[K comparable, V any](cache map[K]V, used map[K]bool, release func(V)) {
	for k, v := range cache {
		if !used[k] {
			release(v)
			delete(cache, k)
		}
	}
}

// prepareNode creates the node's buffers once. Its texture group is rebuilt
// whenever Node.Textures names other files; a file rewritten in place under the
// same path is not reloaded.
func (m *Manager) prepareNode(n *gettingback.Node) (*nodeResources, error) {
	if r, ok := m.nodes[n.ID]; ok {
		if !texturesChanged(r.paths, n.Textures) {
			return r, nil
		}
		r.releaseTextures()
		if err := m.bindTextures(n, r); err != nil {
			r.release()
			delete(m.nodes, n.ID)
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		m.log.Debugf("gpu: reloaded textures of node %s", n.Name)
		return r, nil
	}
	r := &nodeResources{}
	fail := func(err error) (*nodeResources, error) {
		r.release()
		return nil, fmt.Errorf("node %s: %w", n.Name, err)
	}

	var err error
	if r.uniforms, err = m.uniformBuffer("uniforms"); err != nil {
		return fail(err)
	}
	if r.fragment, err = m.uniformBuffer("fragmentUniforms"); err != nil {
		return fail(err)
	}
	if r.material, err = m.uniformBuffer("material"); err != nil {
		return fail(err)
	}
	r.buffers, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  n.Name + " buffers",
		Layout: m.layouts[rev2.GroupBuffers],
		Entries: []wgpu.BindGroupEntry{
			{Binding: uint32(rev2.BufferIndexUniforms), Buffer: r.uniforms, Size: wgpu.WholeSize},
			{Binding: uint32(rev2.BufferIndexLights), Buffer: m.LightsBuf, Size: wgpu.WholeSize},
			{Binding: uint32(rev2.BufferIndexFragmentUniforms), Buffer: r.fragment, Size: wgpu.WholeSize},
			{Binding: uint32(rev2.BufferIndexMaterials), Buffer: r.material, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fail(fmt.Errorf("failed to create buffer bind group: %w", err))
	}

	if err := m.bindTextures(n, r); err != nil {
		return fail(err)
	}

	m.nodes[n.ID] = r
	m.log.Debugf("gpu: prepared node %s", n.Name)
	return r, nil
}

func (m *Manager) bindTextures(n *gettingback.Node, r *nodeResources) error {
	// Missing files fall back to neutral texels and are only logged.
	images, err := texture.LoadSet(n.Textures, m.MaxTextureExtent)
	if err != nil {
		m.log.Warnf("node %s: %v", n.Name, err)
	}
	entries := make([]wgpu.BindGroupEntry, 0, rev2.TextureCount)
	for i, slot := range rev2.TextureSlots {
		r.textures[i], r.views[i], err = m.UploadTexture(fmt.Sprintf("%s %s", n.Name, slot), images[i])
		if err != nil {
			return err
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(slot), TextureView: r.views[i], Size: wgpu.WholeSize})
	}
	r.texGroup, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   n.Name + " textures",
		Layout:  m.layouts[rev2.GroupTextures],
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create texture bind group: %w", err)
	}
	r.paths = maps.Clone(n.Textures)
	return nil
}

// Write uploads the light array and every draw's records. Node resources and
// mesh buffers no draw of f uses are released.
func (m *Manager) Write(f *gettingback.Frame) ([]PreparedDraw, error) {
	if f.Target != layout.WGSL {
		return nil, fmt.Errorf("%w: got %s", ErrWrongTarget, f.Target)
	}
	m.Queue.WriteBuffer(m.LightsBuf, 0, f.Lights)

	usedNodes := make(map[uuid.UUID]bool, len(f.Draws))
	usedMeshes := make(map[*mesh.Mesh]bool, len(f.Draws))
	out := make([]PreparedDraw, 0, len(f.Draws))
	for _, d := range f.Draws {
		r, err := m.prepareNode(d.Node)
		if err != nil {
			return nil, err
		}
		usedNodes[d.Node.ID] = true
		mb, err := m.UploadMesh(d.Node.Mesh)
		if err != nil {
			return nil, err
		}
		usedMeshes[d.Node.Mesh] = true
		m.Queue.WriteBuffer(r.uniforms, 0, d.UniformBytes)
		m.Queue.WriteBuffer(r.fragment, 0, d.FragmentBytes)
		m.Queue.WriteBuffer(r.material, 0, d.MaterialBytes)
		out = append(out, PreparedDraw{Mesh: mb, Buffers: r.buffers, Textures: r.texGroup})
	}

	sweep(m.nodes, usedNodes, (*nodeResources).release)
	sweep(m.meshes, usedMeshes, (*MeshBuffers).release)
	return out, nil
}

func (m *Manager) Release() {
	for id, r := range m.nodes {
		r.release()
		delete(m.nodes, id)
	}
	for k, b := range m.meshes {
		b.release()
		delete(m.meshes, k)
	}
	if m.SamplerGroup != nil {
		m.SamplerGroup.Release()
	}
	if m.Sampler != nil {
		m.Sampler.Release()
	}
	if m.LightsBuf != nil {
		m.LightsBuf.Release()
	}
	for g, l := range m.layouts {
		l.Release()
		delete(m.layouts, g)
	}
}
