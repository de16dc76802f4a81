package hybrid_test

import (
	"math"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaindyn/internal/chain"
	"github.com/san-kum/chaindyn/internal/chain/chaintest"
	"github.com/san-kum/chaindyn/internal/dynamics"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/hybrid"
	"github.com/san-kum/chaindyn/internal/kinematics"
	"github.com/san-kum/chaindyn/internal/spatial"
)

const tol = 1e-8

func expectClose(got, want []float64, eps float64) {
	GinkgoHelper()
	Expect(got).To(HaveLen(len(want)))
	for i := range want {
		Expect(got[i]).To(BeNumerically("~", want[i], eps), "index %d", i)
	}
}

// project returns alfa^T a.
func project(alfa *mat.Dense, a spatial.Twist) []float64 {
	_, nc := alfa.Dims()
	av := a.Vec6()
	out := make([]float64, nc)
	for k := range out {
		for i := 0; i < 6; i++ {
			out[k] += alfa.At(i, k) * av[i]
		}
	}
	return out
}

func yGravity() spatial.Twist {
	return spatial.GravityTwist(r3.Vector{Y: -9.81})
}

var _ = Describe("Vereshchagin", func() {
	Describe("without constraints", func() {
		It("matches the dense forward dynamics", func() {
			c := chaintest.Spatial()
			g := chaintest.Gravity()
			q, qdot, fext := chaintest.SpatialState()
			nj := c.NrOfJoints()
			tau := dynamo.JntArray{0.5, 1, -0.2, 3, 0.01}

			want := dynamo.NewJntArray(nj)
			Expect(dynamics.NewForwardDynamics(c, g).JntToJnt(q, qdot, tau, fext, want)).To(Succeed())

			got := dynamo.NewJntArray(nj)
			out := tau.Clone()
			Expect(hybrid.NewVereshchagin(c, g, 0).CartToJnt(q, qdot, got, nil, nil, fext, out)).To(Succeed())
			expectClose(got, want, tol)
			expectClose(out, make([]float64, nj), 0)
		})

		It("reproduces the single pendulum", func() {
			const m, l, ic = 1.5, 0.8, 0.05
			solver := hybrid.NewVereshchagin(chaintest.Pendulum(m, l, ic), yGravity(), 0)
			fext := make([]spatial.Wrench, 1)
			for _, q := range []float64{-2, -0.3, 0, 0.7, 3} {
				qdd := dynamo.NewJntArray(1)
				Expect(solver.CartToJnt(dynamo.JntArray{q}, dynamo.JntArray{0}, qdd, nil, nil, fext, dynamo.JntArray{0})).To(Succeed())
				want := -9.81 * math.Sin(q) * m * l / (ic + m*l*l)
				Expect(qdd[0]).To(BeNumerically("~", want, 1e-12))
			}
		})

		It("handles an empty chain", func() {
			solver := hybrid.NewVereshchagin(chain.New(), yGravity(), 0)
			Expect(solver.CartToJnt(nil, nil, nil, nil, nil, nil, nil)).To(Succeed())
			acc := make([]spatial.Twist, 1)
			Expect(solver.TransformedLinkAccelerations(acc)).To(Succeed())
			Expect(acc[0]).To(Equal(yGravity()))
		})
	})

	Describe("with end-effector constraints", func() {
		var (
			c         *chain.Chain
			q, qdot   dynamo.JntArray
			fext      []spatial.Wrench
			tau       dynamo.JntArray
			alfa      *mat.Dense
			beta      dynamo.JntArray
			g         spatial.Twist
			nj, nc    int
			solver    *hybrid.Vereshchagin
			reference *dynamics.DenseHybrid
		)

		BeforeEach(func() {
			c = chaintest.Spatial()
			g = chaintest.Gravity()
			q, qdot, fext = chaintest.SpatialState()
			nj = c.NrOfJoints()
			tau = dynamo.JntArray{0.5, 1, -0.2, 3, 0.01}
			nc = 2
			alfa = mat.NewDense(6, nc, nil)
			alfa.Set(2, 0, 1)
			alfa.Set(1, 1, 0.5)
			alfa.Set(3, 1, 0.5)
			beta = dynamo.JntArray{0.3, -0.2}
			solver = hybrid.NewVereshchagin(c, g, nc)
			reference = dynamics.NewDenseHybrid(c, g, nc)
		})

		It("matches the dense constrained solver", func() {
			want, wantTau := dynamo.NewJntArray(nj), tau.Clone()
			Expect(reference.CartToJnt(q, qdot, want, alfa, beta, fext, wantTau)).To(Succeed())

			got, gotTau := dynamo.NewJntArray(nj), tau.Clone()
			Expect(solver.CartToJnt(q, qdot, got, alfa, beta, fext, gotTau)).To(Succeed())
			expectClose(got, want, tol)
			// only the outermost joint sees the end-effector wrench unprojected
			Expect(gotTau[nj-1]).To(BeNumerically("~", wantTau[nj-1], tol))
		})

		It("applies no constraint force when the free motion already satisfies the constraints", func() {
			free := dynamo.NewJntArray(nj)
			Expect(dynamics.NewForwardDynamics(c, g).JntToJnt(q, qdot, tau, fext, free)).To(Succeed())
			tip, err := kinematics.NewSolver(c).TipAcceleration(q, qdot, free, g)
			Expect(err).NotTo(HaveOccurred())
			beta = project(alfa, tip)

			qdd, out := dynamo.NewJntArray(nj), tau.Clone()
			Expect(solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, out)).To(Succeed())
			expectClose(qdd, free, tol)
			expectClose(out, make([]float64, nj), tol)
			expectClose(solver.ConstraintMagnitudes(), make([]float64, nc), tol)
		})

		It("drives the end-effector acceleration along each constraint to beta", func() {
			qdd, out := dynamo.NewJntArray(nj), tau.Clone()
			Expect(solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, out)).To(Succeed())

			acc := make([]spatial.Twist, c.NrOfSegments()+1)
			Expect(solver.TransformedLinkAccelerations(acc)).To(Succeed())
			expectClose(project(alfa, acc[len(acc)-1]), beta, tol)

			tip, err := kinematics.NewSolver(c).TipAcceleration(q, qdot, qdd, g)
			Expect(err).NotTo(HaveOccurred())
			Expect(tip.AlmostEqual(acc[len(acc)-1], tol)).To(BeTrue())
		})

		It("splits every joint acceleration into its contributions", func() {
			qdd, out := dynamo.NewJntArray(nj), tau.Clone()
			Expect(solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, out)).To(Succeed())
			parts := solver.Contributions()
			Expect(parts).To(HaveLen(nj))
			for _, p := range parts {
				Expect(p.Nullspace + p.Constraint + p.Parent).To(BeNumerically("~", qdd[p.Joint], 1e-12))
				Expect(p.Torque).To(Equal(out[p.Joint]))
			}
			Expect(solver.ConstraintMagnitudes()).To(HaveLen(nc))
			Expect(solver.ConstraintRank()).To(Equal(nc))
			rows, cols := solver.RootAccelerationEnergy().Dims()
			Expect(rows).To(Equal(nc))
			Expect(cols).To(Equal(nc))
		})

		It("is deterministic", func() {
			first, firstTau := dynamo.NewJntArray(nj), tau.Clone()
			second, secondTau := dynamo.NewJntArray(nj), tau.Clone()
			Expect(solver.CartToJnt(q, qdot, first, alfa, beta, fext, firstTau)).To(Succeed())
			Expect(solver.CartToJnt(q, qdot, second, alfa, beta, fext, secondTau)).To(Succeed())
			Expect(second).To(Equal(first))
			Expect(secondTau).To(Equal(firstTau))
		})

		It("survives parallel constraint directions", func() {
			alfa = mat.NewDense(6, 2, nil)
			alfa.Set(0, 0, 1)
			alfa.Set(0, 1, 1)
			beta = dynamo.JntArray{0.4, 0.4}
			solver = hybrid.NewVereshchagin(c, g, 2)

			qdd, out := dynamo.NewJntArray(nj), tau.Clone()
			Expect(solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, out)).To(Succeed())
			Expect(qdd.IsValid()).To(BeTrue())
			Expect(out.IsValid()).To(BeTrue())
			Expect(solver.ConstraintRank()).To(Equal(1))

			nu := solver.ConstraintMagnitudes()
			// the redundant direction (nu0 - nu1) carries nothing
			Expect(nu[0] - nu[1]).To(BeNumerically("~", 0, 1e-9))

			acc := make([]spatial.Twist, c.NrOfSegments()+1)
			Expect(solver.TransformedLinkAccelerations(acc)).To(Succeed())
			Expect(acc[len(acc)-1].Vel.X).To(BeNumerically("~", 0.4, tol))
		})
	})

	Describe("on a two-link planar arm", func() {
		It("holds the end-effector x acceleration at zero", func() {
			c := chaintest.Planar([]float64{1, 0.8}, []float64{1, 0.7})
			q := dynamo.JntArray{0.4, 1.1}
			qdot := dynamo.JntArray{0.3, -0.5}
			fext := make([]spatial.Wrench, 2)
			alfa := mat.NewDense(6, 1, nil)
			alfa.Set(0, 0, 1)
			beta := dynamo.JntArray{0}

			qdd, tau := dynamo.NewJntArray(2), dynamo.NewJntArray(2)
			solver := hybrid.NewVereshchagin(c, yGravity(), 1)
			Expect(solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, tau)).To(Succeed())

			want, wantTau := dynamo.NewJntArray(2), dynamo.NewJntArray(2)
			Expect(dynamics.NewDenseHybrid(c, yGravity(), 1).CartToJnt(q, qdot, want, alfa, beta, fext, wantTau)).To(Succeed())
			expectClose(qdd, want, tol)

			acc := make([]spatial.Twist, 3)
			Expect(solver.TransformedLinkAccelerations(acc)).To(Succeed())
			Expect(acc[2].Vel.X).To(BeNumerically("~", 0, tol))

			ref, err := kinematics.NewSolver(c).TipAcceleration(q, qdot, want, yGravity())
			Expect(err).NotTo(HaveOccurred())
			Expect(acc[2].Vel.Y).To(BeNumerically("~", ref.Vel.Y, tol))
		})
	})

	Describe("degenerate joints", func() {
		It("locks a joint with no inertia beyond it and logs it", func() {
			core, logs := observer.New(zap.WarnLevel)
			c := chaintest.Planar([]float64{2, 0}, []float64{1, 0.5})
			solver := hybrid.NewVereshchagin(c, yGravity(), 0, hybrid.WithLogger(zap.New(core)))

			q := dynamo.JntArray{0.6, -0.3}
			qdd := dynamo.JntArray{7, 7}
			Expect(solver.CartToJnt(q, dynamo.NewJntArray(2), qdd, nil, nil, make([]spatial.Wrench, 2), dynamo.NewJntArray(2))).To(Succeed())
			Expect(qdd.IsValid()).To(BeTrue())
			Expect(qdd[1]).To(Equal(0.0))
			Expect(solver.DegenerateJoints()).To(Equal([]int{1}))
			Expect(logs.FilterMessageSnippet("locking").Len()).To(Equal(1))
			Expect(logs.All()[0].ContextMap()).To(HaveKeyWithValue("joint_index", int64(1)))

			// the first link behaves as if it were alone
			single := chaintest.Planar([]float64{2}, []float64{1})
			want := dynamo.NewJntArray(1)
			Expect(hybrid.NewVereshchagin(single, yGravity(), 0).CartToJnt(q[:1], dynamo.NewJntArray(1), want, nil, nil, make([]spatial.Wrench, 1), dynamo.NewJntArray(1))).To(Succeed())
			Expect(qdd[0]).To(BeNumerically("~", want[0], 1e-12))
		})
	})

	Describe("input validation", func() {
		var (
			c      *chain.Chain
			solver *hybrid.Vereshchagin
			two    func() dynamo.JntArray
			fext   []spatial.Wrench
			alfa   *mat.Dense
			beta   dynamo.JntArray
		)

		BeforeEach(func() {
			c = chaintest.Planar([]float64{1, 1}, []float64{1, 1})
			solver = hybrid.NewVereshchagin(c, yGravity(), 1)
			two = func() dynamo.JntArray { return dynamo.JntArray{0.1, 0.2} }
			fext = make([]spatial.Wrench, 2)
			alfa = mat.NewDense(6, 1, nil)
			alfa.Set(0, 0, 1)
			beta = dynamo.JntArray{0}
		})

		It("rejects joint arrays of the wrong size without side effects", func() {
			qdd, tau := two(), two()
			Expect(solver.CartToJnt(two(), two(), qdd, alfa, beta, fext, tau)).To(Succeed())
			before := make([]spatial.Twist, 3)
			Expect(solver.TransformedLinkAccelerations(before)).To(Succeed())

			qdd, tau = dynamo.JntArray{9, 9}, dynamo.JntArray{8, 8}
			err := solver.CartToJnt(dynamo.JntArray{1, 2, 3}, two(), qdd, alfa, beta, fext, tau)
			Expect(err).To(MatchError(dynamo.ErrSizeMismatch))
			Expect(dynamo.StatusCode(err)).To(Equal(dynamo.CodeSizeMismatch))
			Expect(qdd).To(Equal(dynamo.JntArray{9, 9}))
			Expect(tau).To(Equal(dynamo.JntArray{8, 8}))

			after := make([]spatial.Twist, 3)
			Expect(solver.TransformedLinkAccelerations(after)).To(Succeed())
			Expect(after).To(Equal(before))

			err = solver.CartToJnt(two(), two(), two(), alfa, beta, fext[:1], two())
			Expect(dynamo.StatusCode(err)).To(Equal(dynamo.CodeSizeMismatch))
		})

		It("rejects constraint arrays of the wrong size", func() {
			err := solver.CartToJnt(two(), two(), two(), mat.NewDense(6, 2, nil), beta, fext, two())
			Expect(dynamo.StatusCode(err)).To(Equal(dynamo.CodeConstraintSizeMismatch))
			err = solver.CartToJnt(two(), two(), two(), alfa, dynamo.JntArray{0, 0}, fext, two())
			Expect(dynamo.StatusCode(err)).To(Equal(dynamo.CodeConstraintSizeMismatch))
			err = solver.CartToJnt(two(), two(), two(), nil, beta, fext, two())
			Expect(err).To(MatchError(dynamo.ErrConstraintSizeMismatch))
		})

		It("reports joint size mismatches before constraint mismatches", func() {
			err := solver.CartToJnt(two(), two(), two(), nil, nil, fext, dynamo.JntArray{0})
			Expect(dynamo.StatusCode(err)).To(Equal(dynamo.CodeSizeMismatch))
			Expect(err).To(MatchError(dynamo.ErrConstraintSizeMismatch))
		})

		It("requires an update after the chain changes", func() {
			c.AddSegment(chain.NewSegment("tool", chain.NewJoint("tool", chain.Fixed),
				spatial.Translation(r3.Vector{X: 0.1}), chain.PointMass(0.2, r3.Vector{})))
			fext = make([]spatial.Wrench, 3)
			err := solver.CartToJnt(two(), two(), two(), alfa, beta, fext, two())
			Expect(dynamo.StatusCode(err)).To(Equal(dynamo.CodeNotUpToDate))

			solver.UpdateInternalDataStructures()
			solver.UpdateInternalDataStructures()
			Expect(solver.CartToJnt(two(), two(), two(), alfa, beta, fext, two())).To(Succeed())
		})

		It("checks the length of the acceleration output", func() {
			Expect(solver.TransformedLinkAccelerations(make([]spatial.Twist, 2))).To(MatchError(dynamo.ErrSizeMismatch))
		})
	})
})
