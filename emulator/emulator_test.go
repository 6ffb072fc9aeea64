package emulator

import (
	"bytes"
	"errors"
	"maps"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/stackcpu/cpu"
)

var _ = Describe("Emulator", func() {
	var (
		emu    *Emulator
		output *bytes.Buffer
		screen *bytes.Buffer
		frames []time.Duration
	)

	BeforeEach(func() {
		emu = NewEmulator()
		output = &bytes.Buffer{}
		screen = &bytes.Buffer{}
		frames = nil

		emu.Console.Input = strings.NewReader("")
		emu.Console.Output = output
		emu.Screen.Output = screen
		emu.Screen.Color = false
		emu.Screen.Sleep = func(d time.Duration) { frames = append(frames, d) }
	})

	// Helper to assemble and reset a program
	load := func(program ...string) {
		err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(emu.Reset()).To(Succeed())
	}

	Describe("construction", func() {
		It("should wire the devices to the cpu", func() {
			Expect(emu.Verbose).To(BeFalse())
			Expect(emu.Cpu).NotTo(BeNil())
			Expect(emu.Cpu.Console).To(BeIdenticalTo(&emu.Console))
			Expect(emu.Cpu.Display).To(BeIdenticalTo(emu.Screen))
		})

		It("should provide cpu and device defines", func() {
			defines := maps.Collect(emu.Defines())
			Expect(defines).To(HaveKeyWithValue("SCALE", "100"))
			Expect(defines).To(HaveKeyWithValue("RAM_SIZE", "1024"))
			Expect(defines).To(HaveKeyWithValue("SCREEN_WIDTH", "64"))
			Expect(defines).To(HaveKeyWithValue("FRAME_DELAY", "18"))
		})
	})

	Describe("running a program", func() {
		It("should write arithmetic results to the console", func() {
			load("push 5", "push 3", "add", "out", "end")
			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("8.00\n"))
		})

		It("should read console input", func() {
			emu.Console.Input = strings.NewReader("7 2\n")
			load("in", "in", "div", "out", "end")
			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("3.50\n"))
		})

		It("should see device equates", func() {
			load("push FRAME_DELAY", "out", "end")
			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("18.00\n"))
		})

		It("should render frames on draw", func() {
			load("pix 50203", "draw", "draw", "end")
			Expect(emu.Run()).To(Succeed())
			Expect(frames).To(HaveLen(2))
			lines := strings.Split(screen.String(), "\n")
			Expect(lines).To(HaveLen(2*cpu.SCREEN_HEIGHT + 1))
			Expect(lines[20][5]).To(Equal(byte('3')))
		})

		It("should report done once the program ends", func() {
			load("nop", "end")
			done, err := emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			done, err = emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			done, err = emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
		})

		It("should run again after a reset", func() {
			load("push 1", "out", "end")
			Expect(emu.Run()).To(Succeed())
			Expect(emu.Reset()).To(Succeed())
			Expect(emu.Cpu.Stack.Depth()).To(Equal(0))
			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("1.00\n1.00\n"))
		})
	})

	Describe("line mapping", func() {
		It("should track the source line of every instruction", func() {
			program := []string{
				"; count to two",
				"push 1",
				"",
				"loop: push 2",
				"out",
				"end",
			}
			load(program...)

			var lines []int
			for {
				lines = append(lines, emu.LineNo())
				done, err := emu.Tick()
				Expect(err).NotTo(HaveOccurred())
				if done {
					break
				}
			}
			Expect(lines).To(Equal([]int{2, 4, 5, 6, 0}))
		})

		It("should locate runtime faults", func() {
			load("push 5", "push 0", "", "div")
			err := emu.Run()
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, cpu.ErrDivideByZero)).To(BeTrue())

			var rt *ErrRuntime
			Expect(errors.As(err, &rt)).To(BeTrue())
			Expect(rt.LineNo).To(Equal(4))
			Expect(rt.Offset).To(Equal(10))

			var fault *cpu.ErrFault
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Opcode).To(Equal(byte(6)))
		})

		It("should locate faults by offset without a listing", func() {
			code, err := cpu.Assemble("push 1\npop [2000]")
			Expect(err).NotTo(HaveOccurred())

			emu.Program = cpu.LoadProgram(code)
			Expect(emu.Reset()).To(Succeed())
			err = emu.Run()

			var rt *ErrRuntime
			Expect(errors.As(err, &rt)).To(BeTrue())
			Expect(rt.LineNo).To(Equal(0))
			Expect(rt.Offset).To(Equal(5))
			Expect(err).To(MatchError(cpu.ErrMemoryBounds))
			Expect(err.Error()).To(HavePrefix("offset 0x0005 "))
		})
	})

	Describe("assembly", func() {
		It("should keep the previous program on error", func() {
			load("end")
			err := emu.Assemble(strings.NewReader("bogus"))
			Expect(err).To(MatchError(cpu.ErrInstructionInvalid))
			Expect(emu.Program.Code).To(Equal([]byte{7}))
		})
	})
})
