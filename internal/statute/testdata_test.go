package statute

const copyrightLawXML = `<?xml version="1.0" encoding="UTF-8"?>
<DataRoot>
  <Result>
    <Code>0</Code>
    <Message></Message>
  </Result>
  <ApplData>
    <LawId>321AC0000000048</LawId>
    <LawFullText>
      <Law Era="Showa" Year="45" Num="48" LawType="Act" Lang="ja">
        <LawNum>昭和四十五年法律第四十八号</LawNum>
        <LawBody>
          <LawTitle>著作権法</LawTitle>
          <MainProvision>
            <Article Num="30">
              <ArticleCaption>（私的使用のための複製）</ArticleCaption>
              <ArticleTitle>第三十条</ArticleTitle>
              <Paragraph Num="1">
                <ParagraphNum/>
                <ParagraphSentence>
                  <Sentence>著作権の目的となつている著作物（以下この款において単に「著作物」という。）は、個人的に使用することを目的とするときは、その使用する者が複製することができる。</Sentence>
                </ParagraphSentence>
              </Paragraph>
              <Paragraph Num="2">
                <ParagraphNum>２</ParagraphNum>
                <ParagraphSentence>
                  <Sentence>前項の規定は、<Ruby>複製<Rt>ふくせい</Rt></Ruby>の態様を問わない。</Sentence>
                </ParagraphSentence>
              </Paragraph>
            </Article>
          </MainProvision>
        </LawBody>
      </Law>
    </LawFullText>
  </ApplData>
</DataRoot>`

const notFoundXML = `<?xml version="1.0" encoding="UTF-8"?>
<DataRoot>
  <Result>
    <Code>1</Code>
    <Message>該当する法令データが存在しません</Message>
  </Result>
</DataRoot>`
